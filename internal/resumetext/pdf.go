package resumetext

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dslipak/pdf"
)

// extractPDF pulls the plain text out of a PDF document.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}
