package store

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/hpungsan/vault/internal/record"
)

// FormatVersion is written to the version attribute of the root element.
// It is not checked on read.
const FormatVersion = "1.0"

// UpdatedLayout is the format of the root element's updated attribute.
const UpdatedLayout = "2006-01-02T15:04:05.000000"

// document is the XML shape of a vault file as written.
type document struct {
	XMLName xml.Name
	Version string     `xml:"version,attr"`
	Updated string     `xml:"updated,attr"`
	Entries []xmlEntry `xml:"entry"`
}

// xmlEntry is one <entry> as written.
type xmlEntry struct {
	Username     string `xml:"username"`
	UsernameHash string `xml:"username_hash"`
	PasswordHash string `xml:"password_hash"`
	Created      string `xml:"created"`
	Label        string `xml:"label"`
}

// parsedDocument is the XML shape of a vault file as read.
// XMLName carries no tag so any root element name is accepted.
type parsedDocument struct {
	XMLName xml.Name
	Version string        `xml:"version,attr"`
	Updated string        `xml:"updated,attr"`
	Entries []parsedEntry `xml:"entry"`
}

// parsedEntry collects every occurrence of each child so that a repeated
// element resolves to its first occurrence. A missing child reads as "".
type parsedEntry struct {
	Username     []string `xml:"username"`
	UsernameHash []string `xml:"username_hash"`
	PasswordHash []string `xml:"password_hash"`
	Created      []string `xml:"created"`
	Label        []string `xml:"label"`
}

// encode renders records as a complete vault file.
func encode(records []record.Record, updated string) ([]byte, error) {
	doc := document{
		XMLName: xml.Name{Local: "vault"},
		Version: FormatVersion,
		Updated: updated,
		Entries: make([]xmlEntry, len(records)),
	}
	for i, r := range records {
		doc.Entries[i] = xmlEntry{
			Username:     r.Username,
			UsernameHash: r.UsernameHash,
			PasswordHash: r.PasswordHash,
			Created:      r.Created,
			Label:        r.Label,
		}
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// decode parses a vault file. Entries keep file order.
// Anything other than whitespace, comments, or processing instructions
// after the root element is an error.
func decode(data []byte) (*parsedDocument, error) {
	d := xml.NewDecoder(bytes.NewReader(data))

	var doc parsedDocument
	if err := d.Decode(&doc); err != nil {
		return nil, err
	}

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("unexpected content after root element")
			}
		case xml.StartElement:
			return nil, fmt.Errorf("unexpected second root element <%s>", t.Name.Local)
		}
	}

	return &doc, nil
}

// records converts decoded entries to Records.
func (doc *parsedDocument) records() []record.Record {
	out := make([]record.Record, len(doc.Entries))
	for i, e := range doc.Entries {
		out[i] = record.Record{
			Username:     first(e.Username),
			UsernameHash: first(e.UsernameHash),
			PasswordHash: first(e.PasswordHash),
			Created:      first(e.Created),
			Label:        first(e.Label),
		}
	}
	return out
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
