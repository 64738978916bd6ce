package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readDocument flattens a .docx file: body paragraphs first, then table
// rows with their cells joined by tabs. A .docx file is a zip archive
// whose main part is word/document.xml.
func readDocument(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open document %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()
		lines, err := parseDocumentXML(rc)
		if err != nil {
			return "", fmt.Errorf("parse document %s: %w", path, err)
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("document %s has no word/document.xml part", path)
}

// parseDocumentXML walks the WordprocessingML token stream collecting
// text runs. Paragraphs outside tables come first, then one line per
// table row with non-empty cells joined by tabs.
func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs, tableRows []string
	var para, cell strings.Builder
	var rowCells []string
	tableDepth := 0
	inPara := false
	inCell := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					rowCells = rowCells[:0]
				}
			case "tc":
				if tableDepth > 0 {
					inCell = true
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					para.Reset()
				}
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, err
				}
				if inCell {
					cell.WriteString(text)
				} else if inPara {
					para.WriteString(text)
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth--
			case "tr":
				if tableDepth > 0 && len(rowCells) > 0 {
					tableRows = append(tableRows, strings.Join(rowCells, "\t"))
				}
			case "tc":
				if tableDepth > 0 {
					inCell = false
					if text := strings.TrimSpace(cell.String()); text != "" {
						rowCells = append(rowCells, text)
					}
				}
			case "p":
				if tableDepth == 0 && inPara {
					inPara = false
					if text := strings.TrimSpace(para.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		}
	}

	return append(paragraphs, tableRows...), nil
}
