package avalanche

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

// OfficialBulletinURL is the Météo-France mountain bulletin for Méribel.
const OfficialBulletinURL = "https://meteofrance.com/meteo-montagne/meribel/733890"

const bulletinValidity = 24 * time.Hour

const placeholderSummary = "Recent snowfall and rising temperatures have increased avalanche risk " +
	"in the Méribel sector. Wind-loaded slopes above 2000m are particularly vulnerable. " +
	"Natural avalanche activity is possible on steep north-facing terrain."

// Forecaster produces the avalanche bulletin for a location.
type Forecaster interface {
	Bulletin(ctx context.Context, loc weather.Location) (*Bulletin, error)
}

// Placeholder returns fixed, explicitly flagged stub bulletins. It carries
// no danger rating; readers are pointed to the official bulletin instead.
type Placeholder struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewPlaceholder(logger *zap.Logger) *Placeholder {
	return &Placeholder{
		logger: logger.With(zap.String("component", "avalanche-placeholder")),
		now:    time.Now,
	}
}

func (p *Placeholder) Bulletin(ctx context.Context, loc weather.Location) (*Bulletin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issued := p.now().UTC()
	p.logger.Debug("serving placeholder avalanche bulletin", zap.String("location", loc.ID))

	return &Bulletin{
		LocationID: loc.ID,
		Danger:     DangerNone,
		Stub:       true,
		Summary:    placeholderSummary,
		Problems: []Problem{
			{Type: "Wind Slab", Elevation: "Above 2000m", Aspects: []string{"N", "NE", "E"}},
			{Type: "Wet Snow", Elevation: "Below 2500m", Aspects: []string{"S", "SE", "SW"}},
		},
		IssuedAt:    issued,
		ValidUntil:  issued.Add(bulletinValidity),
		OfficialURL: OfficialBulletinURL,
	}, nil
}
