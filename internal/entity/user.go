package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type User struct {
	ID               string   `json:"id"`
	Username         string   `json:"username,omitempty"`
	Barcode          string   `json:"barcode,omitempty"`
	ExternalSystemID string   `json:"externalSystemId,omitempty"`
	Active           bool     `json:"active"`
	PatronGroup      string   `json:"patronGroup,omitempty"`
	Name             string   `json:"name,omitempty"`
	Email            string   `json:"email,omitempty"`
	ExpirationDate   string   `json:"expirationDate,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

func (u *User) Identifier(t IdentifierType) string {
	switch t {
	case IdentifierTypeBarcode:
		return u.Barcode
	case IdentifierTypeUsername:
		return u.Username
	case IdentifierTypeExternalSystemID:
		return u.ExternalSystemID
	default:
		return u.ID
	}
}

var userCSVHeader = []string{
	"User id", "User name", "Barcode", "External system id", "Active",
	"Patron group", "Name", "Email", "Expiration date", "Tags",
}

var userKind = Kind{
	Type:       EntityTypeUser,
	NewRecord:  func() Record { return &User{} },
	CSVHeader:  userCSVHeader,
	CSVRow:     userCSVRow,
	FromCSVRow: userFromCSVRow,
}

func userCSVRow(rec Record, blanked map[string]bool) ([]string, *ConverterError) {
	u := rec.(*User)
	cells := make([]string, 0, len(userCSVHeader))
	for _, col := range userCSVHeader {
		if blanked[col] {
			cells = append(cells, "")
			continue
		}
		switch col {
		case "User id":
			cells = append(cells, u.ID)
		case "User name":
			cells = append(cells, u.Username)
		case "Barcode":
			cells = append(cells, u.Barcode)
		case "External system id":
			cells = append(cells, u.ExternalSystemID)
		case "Active":
			cells = append(cells, strconv.FormatBool(u.Active))
		case "Patron group":
			cells = append(cells, u.PatronGroup)
		case "Name":
			cells = append(cells, u.Name)
		case "Email":
			cells = append(cells, u.Email)
		case "Expiration date":
			v, err := convertDate(u.ExpirationDate)
			if err != nil {
				return nil, &ConverterError{Field: col, Message: err.Error()}
			}
			cells = append(cells, v)
		case "Tags":
			cells = append(cells, strings.Join(u.Tags, ";"))
		}
	}
	return cells, nil
}

func userFromCSVRow(cells []string) (Record, error) {
	if len(cells) != len(userCSVHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(userCSVHeader), len(cells))
	}
	active, err := parseBoolCell(cells[4], "Active")
	if err != nil {
		return nil, err
	}
	if _, err := convertDate(cells[8]); err != nil {
		return nil, fmt.Errorf("column Expiration date: %w", err)
	}
	return &User{
		ID:               cells[0],
		Username:         cells[1],
		Barcode:          cells[2],
		ExternalSystemID: cells[3],
		Active:           active,
		PatronGroup:      cells[5],
		Name:             cells[6],
		Email:            cells[7],
		ExpirationDate:   cells[8],
		Tags:             splitList(cells[9]),
	}, nil
}

func convertDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date value %q", s)
	}
	return s, nil
}

func parseBoolCell(s, column string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("column %s: invalid boolean value %q", column, s)
	}
	return v, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
