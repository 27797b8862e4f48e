package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// rawImage is an embedded image pulled out of a PDF before validation.
type rawImage struct {
	page int
	obj  int
	ext  string
	data []byte
}

// extractRawImages reads every embedded raster image from the PDF.
// Failure to parse the file is fatal; failure to read a single image's
// bytes becomes a Skip.
func extractRawImages(path string) ([]rawImage, []Skip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnreadablePDF, path, err)
	}
	defer f.Close()

	pages, err := api.ExtractImagesRaw(f, nil, model.NewDefaultConfiguration())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: extracting images from %s: %v", ErrUnreadablePDF, path, err)
	}

	var raws []rawImage
	var skips []Skip
	for _, pageImages := range pages {
		// Map iteration order is random; sort by object number so repeated
		// ingestion of the same file stays deterministic.
		objNrs := make([]int, 0, len(pageImages))
		for objNr := range pageImages {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := pageImages[objNr]
			data, err := io.ReadAll(img)
			if err != nil {
				skips = append(skips, Skip{Page: img.PageNr, Reason: fmt.Sprintf("reading image bytes: %v", err)})
				continue
			}
			raws = append(raws, rawImage{
				page: img.PageNr,
				obj:  objNr,
				ext:  img.FileType,
				data: data,
			})
		}
	}
	return raws, skips, nil
}

// persistImages validates each raw image and writes the valid ones to the
// side-channel directory. A corrupt image is recorded as a Skip and never
// aborts the batch.
func persistImages(raws []rawImage, destDir, sourcePDF string) ([]ImageRecord, []Skip) {
	var records []ImageRecord
	var skips []Skip

	for _, raw := range raws {
		if _, err := imaging.Decode(bytes.NewReader(raw.data)); err != nil {
			skips = append(skips, Skip{Page: raw.page, Reason: fmt.Sprintf("decoding image: %v", err)})
			continue
		}

		if err := os.MkdirAll(destDir, 0755); err != nil {
			skips = append(skips, Skip{Page: raw.page, Reason: fmt.Sprintf("creating %s: %v", destDir, err)})
			continue
		}

		ext := raw.ext
		if ext == "" {
			ext = "png"
		}
		name := fmt.Sprintf("%s_page%d_%d.%s", sourcePDF, raw.page, raw.obj, ext)
		path := filepath.Join(destDir, name)
		if err := os.WriteFile(path, raw.data, 0644); err != nil {
			skips = append(skips, Skip{Page: raw.page, Reason: fmt.Sprintf("writing %s: %v", path, err)})
			continue
		}

		records = append(records, ImageRecord{
			Path:      path,
			Page:      raw.page,
			SourcePDF: sourcePDF,
		})
	}
	return records, skips
}

// imageDirFor returns the side-channel directory for a PDF's extracted
// images: "<base>/<name>_extracted_images".
func imageDirFor(baseDir, pdfPath string) string {
	name := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	if baseDir == "" {
		baseDir = filepath.Dir(pdfPath)
	}
	return filepath.Join(baseDir, name+"_extracted_images")
}
