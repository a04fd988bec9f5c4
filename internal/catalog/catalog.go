// Package catalog holds the fixed Méribel locations and the external
// webcam and bulletin links shown next to the weather panels.
package catalog

import (
	"fmt"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

// DefaultLocationID is selected at startup unless configured otherwise.
const DefaultLocationID = "meribel-centre"

var locations = []weather.Location{
	{ID: "meribel-centre", Name: "Méribel Centre", Latitude: 45.401, Longitude: 6.567, ElevationM: 1450},
	{ID: "meribel-mottaret", Name: "Méribel-Mottaret", Latitude: 45.375, Longitude: 6.578, ElevationM: 1750},
	{ID: "sommet", Name: "Sommet (Saulire)", Latitude: 45.389, Longitude: 6.571, ElevationM: 2700},
}

// Webcam is an embeddable live camera.
type Webcam struct {
	Name     string `json:"name"`
	EmbedURL string `json:"embedUrl"`
	LinkURL  string `json:"linkUrl"`
}

// Link is an external resource.
type Link struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Resources groups everything the dashboard links out to.
type Resources struct {
	Webcams []Webcam `json:"webcams"`
	Links   []Link   `json:"links"`
}

const webcamPage = "https://www.meribel.net/en/practical-information/weather/"

var webcams = []Webcam{
	{Name: "Saulire Summit (2700m)", EmbedURL: "https://www.meribel.net/en/webcam-embed/saulire/", LinkURL: webcamPage},
	{Name: "Méribel Centre", EmbedURL: "https://www.meribel.net/en/webcam-embed/centre/", LinkURL: webcamPage},
	{Name: "Rond Point des Pistes", EmbedURL: "https://www.meribel.net/en/webcam-embed/rond-point/", LinkURL: webcamPage},
	{Name: "Moon Park", EmbedURL: "https://www.meribel.net/en/webcam-embed/moon-park/", LinkURL: webcamPage},
}

var links = []Link{
	{Name: "Méribel", URL: "https://www.meribel.net/en/", Description: "Resort information and lift status"},
	{Name: "Météo-France Montagne", URL: "https://meteofrance.com/meteo-montagne/meribel/733890", Description: "Official mountain weather and avalanche bulletin"},
	{Name: "Data-Avalanche", URL: "https://www.data-avalanche.org/", Description: "Observed avalanche activity"},
	{Name: "Méribel weather", URL: webcamPage, Description: "Local forecast and webcams"},
}

// Locations returns the selectable locations in display order.
func Locations() []weather.Location {
	return append([]weather.Location(nil), locations...)
}

// Lookup finds a location by id.
func Lookup(id string) (weather.Location, error) {
	for _, loc := range locations {
		if loc.ID == id {
			return loc, nil
		}
	}
	return weather.Location{}, fmt.Errorf("%w: %q", weather.ErrUnknownLocation, id)
}

func GetResources() Resources {
	return Resources{
		Webcams: append([]Webcam(nil), webcams...),
		Links:   append([]Link(nil), links...),
	}
}
