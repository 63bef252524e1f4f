package printing

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// CountPages parses a PDF and returns its page count.
func CountPages(pdf []byte) (int, error) {
	if len(pdf) == 0 {
		return 0, &PDFError{Message: "empty document"}
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, &PDFError{Message: "failed to read PDF", Cause: err}
	}
	return ctx.PageCount, nil
}
