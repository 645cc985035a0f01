package handlers

import (
	"net/http"

	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/image"
)

type aspectRatioDTO struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type styleDTO struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Keywords    string `json:"keywords"`
	Description string `json:"description"`
}

type presetsResponse struct {
	AspectRatios []aspectRatioDTO `json:"aspectRatios"`
	Styles       []styleDTO       `json:"styles"`
}

// Presets lists the aspect ratio and style options a console can offer.
func (a *App) Presets(w http.ResponseWriter, r *http.Request) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	res := presetsResponse{}
	for _, ratio := range image.AspectRatios() {
		size := ratio.Dimensions()
		res.AspectRatios = append(res.AspectRatios, aspectRatioDTO{
			Label:  ratio.Label(),
			Value:  string(ratio),
			Width:  size.Width,
			Height: size.Height,
		})
	}
	for _, style := range image.Styles() {
		res.Styles = append(res.Styles, styleDTO{
			Label:       style.Label(),
			Value:       string(style),
			Keywords:    style.Keywords(),
			Description: style.Description(),
		})
	}
	a.json(w, http.StatusOK, res)
}
