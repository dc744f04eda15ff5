// Package extract turns uploaded file bytes into plain text. Extraction
// never fails the import: unreadable formats degrade to an inline error
// note or a base64 payload, and the method tag records what happened.
package extract

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// Extraction method tags recorded in document metadata.
const (
	MethodTextDecode   = "text_decode"
	MethodPDF          = "pdf_extract"
	MethodDocx         = "docx_extract"
	MethodXlsx         = "xlsx_extract"
	MethodPptx         = "pptx_extract"
	MethodDoc          = "doc_extract"
	MethodBase64Encode = "base64_encode"
)

// Result is extracted text plus the method that produced it.
type Result struct {
	Content string
	Method  string
}

var textMediaTypes = map[string]bool{
	"text/plain": true, "text/markdown": true, "text/csv": true,
	"application/json": true, "application/xml": true, "text/xml": true,
	"application/yaml": true, "text/yaml": true, "application/x-yaml": true,
	"text/html": true, "text/css": true,
	"text/javascript": true, "application/javascript": true,
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true,
	".yaml": true, ".yml": true, ".xml": true, ".html": true,
	".htm": true, ".log": true, ".rst": true,
}

var documentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".doc":  "application/msword",
}

// Extract dispatches on the declared media type, falling back to the file
// extension when the client sent none or a generic octet-stream. Types we
// cannot read are stored base64-encoded with a marker prefix so the
// payload survives the round trip.
func Extract(data []byte, mediaType, filename string) Result {
	mt := normalizeMediaType(mediaType)
	if mt == "" || mt == "application/octet-stream" {
		mt = mediaTypeFromExtension(filename)
	}

	switch {
	case textMediaTypes[mt] || strings.HasPrefix(mt, "text/"):
		return Result{Content: decodeText(data), Method: MethodTextDecode}
	case mt == "application/pdf":
		return degradable(MethodPDF, "PDF", data, extractPDF)
	case mt == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return degradable(MethodDocx, "DOCX", data, extractDocx)
	case mt == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return degradable(MethodXlsx, "XLSX", data, extractXlsx)
	case mt == "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return degradable(MethodPptx, "PPTX", data, extractPptx)
	case mt == "application/msword":
		return Result{
			Content: "Legacy .doc format is not supported for text extraction. Convert the file to .docx and re-import.",
			Method:  MethodDoc,
		}
	default:
		return Result{
			Content: fmt.Sprintf("Unsupported file type: %s\nBinary content (base64): %s",
				mediaTypeLabel(mediaType, mt), base64.StdEncoding.EncodeToString(data)),
			Method: MethodBase64Encode,
		}
	}
}

func normalizeMediaType(mediaType string) string {
	mt, _, _ := strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func mediaTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if textExtensions[ext] {
		return "text/plain"
	}
	return documentExtensions[ext]
}

func mediaTypeLabel(declared, resolved string) string {
	if mt := normalizeMediaType(declared); mt != "" {
		return mt
	}
	if resolved != "" {
		return resolved
	}
	return "application/octet-stream"
}

func degradable(method, label string, data []byte, fn func([]byte) (string, error)) Result {
	content, err := fn(data)
	if err != nil {
		return Result{
			Content: fmt.Sprintf("Error extracting %s content: %v", label, err),
			Method:  method,
		}
	}
	return Result{Content: content, Method: method}
}
