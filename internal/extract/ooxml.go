package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// collectRuns streams an OOXML part and gathers the character data of
// every <t> run, inserting newlines at paragraph boundaries and tabs for
// explicit tab elements.
func collectRuns(r io.Reader, sb *strings.Builder) error {
	dec := xml.NewDecoder(r)
	inRun := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inRun = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				sb.Write(el)
			}
		}
	}
}

func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()

		var sb strings.Builder
		if err := collectRuns(rc, &sb); err != nil {
			return "", fmt.Errorf("parse document part: %w", err)
		}
		return strings.TrimSpace(sb.String()), nil
	}
	return "", fmt.Errorf("word/document.xml not found")
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func extractPptx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}

	type slide struct {
		n    int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePartRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, file: f})
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var sb strings.Builder
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", fmt.Errorf("open slide %d: %w", s.n, err)
		}
		var body strings.Builder
		parseErr := collectRuns(rc, &body)
		rc.Close()
		if parseErr != nil {
			return "", fmt.Errorf("parse slide %d: %w", s.n, parseErr)
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "--- Slide %d ---\n", s.n)
		sb.WriteString(strings.TrimSpace(body.String()))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
