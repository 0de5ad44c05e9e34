package office

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	docxMainPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	markupCompatNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

var ErrNoDocumentPart = errors.New("docx: word/document.xml not found")

// DecodeDOCX returns the paragraphs of the main document part as plain text,
// text box paragraphs included.
// Tabs and line breaks inside runs become '\t' and '\n'.
func DecodeDOCX(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx open: %w", err)
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxMainPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, ErrNoDocumentPart
	}
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("docx part: %w", err)
	}
	defer rc.Close()
	return readParagraphs(rc)
}

// DocxText joins decoded paragraphs with '\n'.
func DocxText(data []byte) (string, error) {
	paras, err := DecodeDOCX(data)
	if err != nil {
		return "", err
	}
	return strings.Join(paras, "\n"), nil
}

// openPara is a paragraph still being read; slot is its index in the output.
type openPara struct {
	slot int
	text strings.Builder
}

// readParagraphs lists paragraphs in document order of their start tag.
// Paragraphs nested in text boxes get their own entry and never cut the
// enclosing one. mc:Fallback is skipped since it repeats mc:Choice content.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []string
		stack  []*openPara
		inText bool
	)
	top := func() *openPara {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == markupCompatNS && t.Name.Local == "Fallback" {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("docx xml: %w", err)
				}
				continue
			}
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				paras = append(paras, "")
				stack = append(stack, &openPara{slot: len(paras) - 1})
			case "t":
				inText = true
			case "tab":
				if p := top(); p != nil {
					p.text.WriteByte('\t')
				}
			case "br", "cr":
				if p := top(); p != nil {
					p.text.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if p := top(); p != nil {
					paras[p.slot] = p.text.String()
					stack = stack[:len(stack)-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if p := top(); p != nil && inText {
				p.text.Write(t)
			}
		}
	}
	return paras, nil
}

// EncodeDOCX builds a minimal WordprocessingML package with one paragraph per entry.
func EncodeDOCX(paragraphs []string) ([]byte, error) {
	var body bytes.Buffer
	body.WriteString(xml.Header)
	body.WriteString(`<w:document xmlns:w="` + wordNS + `"><w:body>`)
	for _, p := range paragraphs {
		if p == "" {
			body.WriteString("<w:p/>")
			continue
		}
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		if err := xml.EscapeText(&body, []byte(p)); err != nil {
			return nil, err
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`<w:sectPr/></w:body></w:document>`)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{docxMainPart, body.Bytes()},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docx %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx close: %w", err)
	}
	return out.Bytes(), nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
