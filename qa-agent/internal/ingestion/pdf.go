package ingestion

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ExtractTextFromPDF returns the text layer of the PDF at path, one page per
// paragraph block so the chunker never joins text across a page break.
// Documents without a text layer go through the pdftotext CLI when it is
// installed; otherwise the result is empty and the caller skips the file.
func ExtractTextFromPDF(ctx context.Context, path string) (string, error) {
	text, err := readTextLayer(path)
	if err != nil {
		return "", fmt.Errorf("read pdf %s: %w", path, err)
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	return pdftotext(ctx, path), nil
}

func readTextLayer(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}

func pdftotext(ctx context.Context, path string) string {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ""
	}
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return ""
	}
	return string(out)
}
