package service

import (
	"net/url"
	"strings"

	"commish/internal/domain"
	"commish/internal/models"
)

// RedirectService is the redirect bridge: inbound tracking code in, outbound
// parameter-tagged destination URL out. Read-mostly and safe for concurrent
// resolution; the click increment is atomic at the store.
type RedirectService struct {
	registry  *RegistryService
	campaigns registryCampaignStore
}

func NewRedirectService(registry *RegistryService, campaigns registryCampaignStore) *RedirectService {
	return &RedirectService{registry: registry, campaigns: campaigns}
}

// SanitizeRedirectURL forces an http(s) scheme on the campaign's raw target.
// Any other scheme is stripped before prefixing, so the output always
// matches ^https?:// and a campaign target can never smuggle a javascript:
// or data: payload into the redirect.
func SanitizeRedirectURL(raw string) string {
	u := strings.TrimSpace(raw)
	if httpPrefix.MatchString(u) {
		return u
	}
	return "https://" + schemePrefix.ReplaceAllString(u, "")
}

// AppendTrackingParam tags the destination with the discount/tracking code,
// using & or ? depending on whether a query string is already present.
func AppendTrackingParam(dest, code string) string {
	separator := "?"
	if strings.Contains(dest, "?") {
		separator = "&"
	}
	return dest + separator + "discount=" + url.QueryEscape(code)
}

// Resolve turns a tracking code (or the legacy creator+merchant pair) into
// the final outbound URL, recording the click. Dead links and retired
// campaigns fail with ErrNotFound; the handler renders a generic message
// either way so a probe cannot tell which part of the lookup failed.
func (s *RedirectService) Resolve(refCode, legacyCreatorID, legacyMerchant, remoteAddr string) (string, *models.AffiliateLink, error) {
	var link *models.AffiliateLink
	var err error
	switch {
	case refCode != "":
		link, err = s.registry.ResolveByCode(refCode)
	case legacyCreatorID != "" && legacyMerchant != "":
		link, err = s.registry.FindForRedirect(legacyCreatorID, legacyMerchant)
	default:
		return "", nil, domain.Invalid("ref", "missing identifier")
	}
	if err != nil {
		return "", nil, err
	}
	if link.Status != domain.LinkActive {
		return "", nil, domain.ErrNotFound
	}

	campaign, err := s.campaigns.GetByID(link.CampaignID)
	if err != nil || campaign.Status == domain.CampaignEnded || strings.TrimSpace(campaign.TargetURL) == "" {
		return "", nil, domain.ErrNotFound
	}

	s.registry.RecordClick(link.ID, campaign.BusinessName, remoteAddr)

	finalURL := AppendTrackingParam(SanitizeRedirectURL(campaign.TargetURL), link.Code)
	return finalURL, link, nil
}
