package service

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"commish/internal/domain"
	"commish/internal/models"
	"commish/pkg/codegen"

	"gorm.io/gorm"
)

type registryLinkStore interface {
	Create(l *models.AffiliateLink) error
	GetByID(id string) (*models.AffiliateLink, error)
	GetByCampaignAndCreator(campaignID, creatorID string) (*models.AffiliateLink, error)
	GetByCode(code string) (*models.AffiliateLink, error)
	CodeTakenByOther(code, excludeLinkID string) (bool, error)
	Update(l *models.AffiliateLink) error
	ListByCreator(creatorID string) ([]models.AffiliateLink, error)
	IncrementClicks(linkID string) error
	CreateClickLog(cl *models.ClickLog) error
	RevokeByCampaign(campaignID string) error
}

type registryCampaignStore interface {
	GetByID(id string) (*models.Campaign, error)
}

// RegistryService owns the affiliate link lifecycle: request, assignment,
// detail edits, code resolution and click counting.
type RegistryService struct {
	links     registryLinkStore
	campaigns registryCampaignStore
}

func NewRegistryService(links registryLinkStore, campaigns registryCampaignStore) *RegistryService {
	return &RegistryService{links: links, campaigns: campaigns}
}

var schemePrefix = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
var httpPrefix = regexp.MustCompile(`(?i)^https?://`)

// EnsureURLScheme prefixes https:// when the URL carries no http(s) scheme,
// stripping any other scheme first.
func EnsureURLScheme(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if httpPrefix.MatchString(u) {
		return u
	}
	return "https://" + schemePrefix.ReplaceAllString(u, "")
}

// RequestLink opens a PENDING_ASSIGNMENT link for the (campaign, creator)
// pair. Idempotent: a repeated request returns the existing row instead of
// creating a second one.
func (s *RegistryService) RequestLink(campaignID, creatorID, creatorName string) (*models.AffiliateLink, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if campaign.Status == domain.CampaignEnded {
		return nil, domain.Invalid("campaign", "campaign has ended")
	}
	if existing, err := s.links.GetByCampaignAndCreator(campaignID, creatorID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	link := &models.AffiliateLink{
		CampaignID:  campaignID,
		CreatorID:   creatorID,
		CreatorName: creatorName,
		Status:      domain.LinkPendingAssignment,
	}
	if err := s.links.Create(link); err != nil {
		// Lost a race against a concurrent request for the same pair;
		// the unique index holds the invariant, return the winner.
		if existing, lookupErr := s.links.GetByCampaignAndCreator(campaignID, creatorID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return link, nil
}

func (s *RegistryService) validateCodeAndURL(linkID, code, destinationURL string) (normalizedCode, normalizedURL string, err error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", "", domain.Invalid("code", "tracking code is required")
	}
	if strings.TrimSpace(destinationURL) == "" {
		return "", "", domain.Invalid("destination_url", "destination URL is required")
	}
	taken, err := s.links.CodeTakenByOther(code, linkID)
	if err != nil {
		return "", "", err
	}
	if taken {
		return "", "", domain.Invalid("code", "tracking code already in use")
	}
	return code, EnsureURLScheme(destinationURL), nil
}

// AssignLink attaches a tracking code and destination URL, activating the
// link. The code becomes globally resolvable. An empty code is filled in
// with one derived from the campaign's product name.
func (s *RegistryService) AssignLink(linkID, code, destinationURL, discountCode string) (*models.AffiliateLink, error) {
	link, err := s.links.GetByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		code, err = s.generateCode(link)
		if err != nil {
			return nil, err
		}
	}
	normCode, normURL, err := s.validateCodeAndURL(link.ID, code, destinationURL)
	if err != nil {
		return nil, err
	}
	link.Code = normCode
	link.DestinationURL = normURL
	link.DiscountCode = strings.TrimSpace(discountCode)
	link.Status = domain.LinkActive
	if err := s.links.Update(link); err != nil {
		return nil, err
	}
	return link, nil
}

// generateCode mints a tracking code seeded by the campaign's product name,
// retrying on registry collisions. The random suffix makes repeated
// collisions vanishingly unlikely; the bound guards against a pathological
// registry state.
func (s *RegistryService) generateCode(link *models.AffiliateLink) (string, error) {
	hint := ""
	if campaign, err := s.campaigns.GetByID(link.CampaignID); err == nil {
		hint = campaign.ProductName
	}
	for attempt := 0; attempt < 5; attempt++ {
		code := codegen.NewTrackingCode(hint)
		taken, err := s.links.CodeTakenByOther(code, link.ID)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", domain.Invalid("code", "could not mint a unique tracking code")
}

// UpdateLinkDetails edits code and destination on an ACTIVE link. The click
// counter is untouched.
func (s *RegistryService) UpdateLinkDetails(linkID, code, destinationURL string) (*models.AffiliateLink, error) {
	link, err := s.links.GetByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if link.Status != domain.LinkActive {
		return nil, domain.Invalid("status", "link is not active")
	}
	normCode, normURL, err := s.validateCodeAndURL(link.ID, code, destinationURL)
	if err != nil {
		return nil, err
	}
	link.Code = normCode
	link.DestinationURL = normURL
	if err := s.links.Update(link); err != nil {
		return nil, err
	}
	return link, nil
}

// ResolveByCode finds a link by tracking code, case-insensitively.
func (s *RegistryService) ResolveByCode(code string) (*models.AffiliateLink, error) {
	link, err := s.links.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return link, nil
}

// FindForRedirect supports the legacy creator+merchant redirect pair by
// matching the campaign's business name loosely.
func (s *RegistryService) FindForRedirect(creatorID, merchantName string) (*models.AffiliateLink, error) {
	links, err := s.links.ListByCreator(creatorID)
	if err != nil {
		return nil, err
	}
	want := normalizeName(merchantName)
	for i := range links {
		campaign, err := s.campaigns.GetByID(links[i].CampaignID)
		if err != nil {
			continue
		}
		if normalizeName(campaign.BusinessName) == want {
			return &links[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

func normalizeName(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// RecordClick bumps the click counter and appends a click log row. A missing
// link is a logged no-op; this path never fails the redirect.
func (s *RegistryService) RecordClick(linkID, merchantName, remoteAddr string) {
	link, err := s.links.GetByID(linkID)
	if err != nil {
		log.Printf("[registry] click on unknown link %s: %v", linkID, err)
		return
	}
	if err := s.links.IncrementClicks(link.ID); err != nil {
		log.Printf("[registry] click increment %s: %v", link.ID, err)
		return
	}
	_ = s.links.CreateClickLog(&models.ClickLog{
		LinkID:       link.ID,
		CreatorID:    link.CreatorID,
		MerchantName: merchantName,
		ClickedAt:    time.Now(),
		RemoteAddr:   remoteAddr,
	})
}

// RevokeCampaignLinks cascades a campaign retirement onto its links.
func (s *RegistryService) RevokeCampaignLinks(campaignID string) error {
	return s.links.RevokeByCampaign(campaignID)
}
