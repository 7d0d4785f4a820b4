package character

import (
	"fmt"
	"strings"
	"time"
)

// Organization is read-mostly reference data for a game-world corporation.
// Populated and refreshed from the affiliation provider.
type Organization struct {
	organizationID int64
	name           string
	ticker         string
	allianceID     int64 // zero when the organization is not in an alliance
	updatedAt      time.Time
}

func NewOrganization(organizationID int64, name, ticker string, allianceID int64) (*Organization, error) {
	if organizationID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("organization name is required")
	}

	return &Organization{
		organizationID: organizationID,
		name:           name,
		ticker:         ticker,
		allianceID:     allianceID,
		updatedAt:      time.Now().UTC(),
	}, nil
}

func ReconstructOrganization(organizationID int64, name, ticker string, allianceID int64, updatedAt time.Time) (*Organization, error) {
	if organizationID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	return &Organization{
		organizationID: organizationID,
		name:           name,
		ticker:         ticker,
		allianceID:     allianceID,
		updatedAt:      updatedAt,
	}, nil
}

func (o *Organization) OrganizationID() int64 { return o.organizationID }
func (o *Organization) Name() string          { return o.name }
func (o *Organization) Ticker() string        { return o.ticker }
func (o *Organization) AllianceID() int64     { return o.allianceID }
func (o *Organization) UpdatedAt() time.Time  { return o.updatedAt }

// Refresh applies provider data in place.
func (o *Organization) Refresh(name, ticker string, allianceID int64) {
	o.name = name
	o.ticker = ticker
	o.allianceID = allianceID
	o.updatedAt = time.Now().UTC()
}

// Alliance is the parent grouping of organizations.
type Alliance struct {
	allianceID int64
	name       string
	ticker     string
	updatedAt  time.Time
}

func NewAlliance(allianceID int64, name, ticker string) (*Alliance, error) {
	if allianceID == 0 {
		return nil, fmt.Errorf("alliance ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("alliance name is required")
	}
	return &Alliance{
		allianceID: allianceID,
		name:       name,
		ticker:     ticker,
		updatedAt:  time.Now().UTC(),
	}, nil
}

func ReconstructAlliance(allianceID int64, name, ticker string, updatedAt time.Time) (*Alliance, error) {
	if allianceID == 0 {
		return nil, fmt.Errorf("alliance ID is required")
	}
	return &Alliance{allianceID: allianceID, name: name, ticker: ticker, updatedAt: updatedAt}, nil
}

func (a *Alliance) AllianceID() int64    { return a.allianceID }
func (a *Alliance) Name() string         { return a.name }
func (a *Alliance) Ticker() string       { return a.ticker }
func (a *Alliance) UpdatedAt() time.Time { return a.updatedAt }

// Refresh applies provider data in place.
func (a *Alliance) Refresh(name, ticker string) {
	a.name = name
	a.ticker = ticker
	a.updatedAt = time.Now().UTC()
}
