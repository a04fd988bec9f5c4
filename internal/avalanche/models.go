package avalanche

import (
	"encoding/json"
	"fmt"
	"time"
)

// DangerLevel is a normalized integer enum (0-5) matching the European
// Avalanche Danger Scale. 0 means no rating is available.
type DangerLevel int

const (
	DangerNone         DangerLevel = 0
	DangerLow          DangerLevel = 1
	DangerModerate     DangerLevel = 2
	DangerConsiderable DangerLevel = 3
	DangerHigh         DangerLevel = 4
	DangerVeryHigh     DangerLevel = 5
)

var dangerLevelNames = map[DangerLevel]string{
	DangerNone:         "No Rating",
	DangerLow:          "Low",
	DangerModerate:     "Moderate",
	DangerConsiderable: "Considerable",
	DangerHigh:         "High",
	DangerVeryHigh:     "Very High",
}

func (d DangerLevel) String() string {
	if name, ok := dangerLevelNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", int(d))
}

// Rated reports whether d is a level on the 1-5 scale.
func (d DangerLevel) Rated() bool {
	return d >= DangerLow && d <= DangerVeryHigh
}

// MarshalJSON renders the level with its label so the UI needs no table.
func (d DangerLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Level int    `json:"level"`
		Label string `json:"label"`
	}{int(d), d.String()})
}

// Problem is one avalanche problem with the terrain it applies to.
type Problem struct {
	Type      string   `json:"type"`
	Elevation string   `json:"elevation"`
	Aspects   []string `json:"aspects"`
}

// Bulletin is the avalanche panel content for one location.
// Stub is true when the bulletin is placeholder content and must not be
// read as a real risk assessment.
type Bulletin struct {
	LocationID  string      `json:"locationId"`
	Danger      DangerLevel `json:"danger"`
	Stub        bool        `json:"stub"`
	Summary     string      `json:"summary"`
	Problems    []Problem   `json:"problems"`
	IssuedAt    time.Time   `json:"issuedAt"`
	ValidUntil  time.Time   `json:"validUntil"`
	OfficialURL string      `json:"officialUrl"`
}
