package dto

import (
	"fmt"
	"whatsapp-gateway-client/internal/domain/entities"
)

type TextPayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type ButtonsPayload struct {
	To      string   `json:"to"`
	Text    string   `json:"text"`
	Buttons []string `json:"buttons"`
}

type ListPayload struct {
	To   string      `json:"to"`
	Text string      `json:"text"`
	List ListContent `json:"list"`
}

type ListContent struct {
	Title      string           `json:"title"`
	ButtonText string           `json:"buttonText"`
	Sections   []SectionContent `json:"sections"`
}

type SectionContent struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

type ListRow struct {
	Title string `json:"title"`
	RowID string `json:"rowId"`
}

type LocationPayload struct {
	To       string      `json:"to"`
	Location Coordinates `json:"location"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewTextPayload(to, text string) TextPayload {
	return TextPayload{To: to, Text: text}
}

// NewButtonsPayload keeps the labels in order. Duplicates and count are the
// gateway's business.
func NewButtonsPayload(to, text string, buttons []string) ButtonsPayload {
	labels := make([]string, 0, len(buttons))
	labels = append(labels, buttons...)

	return ButtonsPayload{To: to, Text: text, Buttons: labels}
}

// NewListPayload assigns every row the id row_<section>_<row>, indexes being
// positions in the given slices.
func NewListPayload(to, text, title, buttonText string, sections []entities.ListSection) ListPayload {
	content := ListContent{
		Title:      title,
		ButtonText: buttonText,
		Sections:   make([]SectionContent, 0, len(sections)),
	}

	for i, section := range sections {
		rows := make([]ListRow, 0, len(section.Rows))
		for j, label := range section.Rows {
			rows = append(rows, ListRow{Title: label, RowID: RowID(i, j)})
		}
		content.Sections = append(content.Sections, SectionContent{Title: section.Title, Rows: rows})
	}

	return ListPayload{To: to, Text: text, List: content}
}

func NewLocationPayload(to string, lat, lng float64) LocationPayload {
	return LocationPayload{To: to, Location: Coordinates{Lat: lat, Lng: lng}}
}

func RowID(section, row int) string {
	return fmt.Sprintf("row_%d_%d", section, row)
}
