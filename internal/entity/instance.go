package entity

import (
	"fmt"
	"strconv"
	"strings"
)

type Instance struct {
	ID                string   `json:"id"`
	HRID              string   `json:"hrid,omitempty"`
	Source            string   `json:"source,omitempty"`
	Title             string   `json:"title,omitempty"`
	Contributors      []string `json:"contributors,omitempty"`
	PublicationDate   string   `json:"publicationDate,omitempty"`
	StaffSuppress     bool     `json:"staffSuppress"`
	DiscoverySuppress bool     `json:"discoverySuppress"`
}

func (i *Instance) Identifier(t IdentifierType) string {
	if t == IdentifierTypeHRID {
		return i.HRID
	}
	return i.ID
}

var instanceCSVHeader = []string{
	"Instance id", "HRID", "Source", "Title", "Contributors",
	"Publication date", "Staff suppress", "Discovery suppress",
}

var instanceKind = Kind{
	Type:       EntityTypeInstance,
	NewRecord:  func() Record { return &Instance{} },
	CSVHeader:  instanceCSVHeader,
	CSVRow:     instanceCSVRow,
	FromCSVRow: instanceFromCSVRow,
}

func instanceCSVRow(rec Record, blanked map[string]bool) ([]string, *ConverterError) {
	i := rec.(*Instance)
	cells := make([]string, 0, len(instanceCSVHeader))
	for _, col := range instanceCSVHeader {
		if blanked[col] {
			cells = append(cells, "")
			continue
		}
		switch col {
		case "Instance id":
			cells = append(cells, i.ID)
		case "HRID":
			cells = append(cells, i.HRID)
		case "Source":
			cells = append(cells, i.Source)
		case "Title":
			cells = append(cells, i.Title)
		case "Contributors":
			cells = append(cells, strings.Join(i.Contributors, ";"))
		case "Publication date":
			v, err := convertDate(i.PublicationDate)
			if err != nil {
				return nil, &ConverterError{Field: col, Message: err.Error()}
			}
			cells = append(cells, v)
		case "Staff suppress":
			cells = append(cells, strconv.FormatBool(i.StaffSuppress))
		case "Discovery suppress":
			cells = append(cells, strconv.FormatBool(i.DiscoverySuppress))
		}
	}
	return cells, nil
}

func instanceFromCSVRow(cells []string) (Record, error) {
	if len(cells) != len(instanceCSVHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(instanceCSVHeader), len(cells))
	}
	staff, err := parseBoolCell(cells[6], "Staff suppress")
	if err != nil {
		return nil, err
	}
	discovery, err := parseBoolCell(cells[7], "Discovery suppress")
	if err != nil {
		return nil, err
	}
	if _, err := convertDate(cells[5]); err != nil {
		return nil, fmt.Errorf("column Publication date: %w", err)
	}
	return &Instance{
		ID:                cells[0],
		HRID:              cells[1],
		Source:            cells[2],
		Title:             cells[3],
		Contributors:      splitList(cells[4]),
		PublicationDate:   cells[5],
		StaffSuppress:     staff,
		DiscoverySuppress: discovery,
	}, nil
}
