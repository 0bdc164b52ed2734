package audit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"assetaudit/internal/model"
	"assetaudit/internal/pngmeta"
	"assetaudit/internal/store"
)

// ImageStats aggregates PASS 4 over the images whose header could be read.
type ImageStats struct {
	Read       int            // headers parsed
	Dimensions map[string]int // "<w>x<h>" -> count
	Dominant   string         // most frequent dimension; first seen wins a tie
	MeanSize   float64        // bytes
}

type imageInfo struct {
	idx    int
	header model.PNGHeader
}

// CheckImages is PASS 4: header integrity per image, then majority-vote
// dimension consistency and file-size outliers over the whole set.
func (a *Auditor) CheckImages(dir *store.Dir, valid []int, log *IssueLog) (PassSummary, ImageStats) {
	sum := PassSummary{Pass: 4, Title: "PNG Validity — file integrity, dimensions, consistency"}
	thresholds := a.cfg.Images
	stats := ImageStats{Dimensions: make(map[string]int)}

	var infos []imageInfo
	var dimOrder []string
	errs := 0
	for _, idx := range valid {
		subject := model.ImageName(idx)
		h, err := pngmeta.ReadHeader(dir.ImagePath(idx))
		if err != nil {
			reason := err.Error()
			var pe *pngmeta.ParseError
			if errors.As(err, &pe) {
				reason = pe.Reason
			}
			log.Addf(4, model.SeverityError, CheckInvalidImage, subject, "Invalid PNG: %s", reason)
			errs++
			continue
		}

		infos = append(infos, imageInfo{idx: idx, header: h})
		dim := h.Dimension()
		if stats.Dimensions[dim] == 0 {
			dimOrder = append(dimOrder, dim)
		}
		stats.Dimensions[dim]++

		if h.FileSize < thresholds.MinFileSize {
			log.Addf(4, model.SeverityError, CheckImageTooSmall, subject,
				"Suspiciously small file: %d bytes", h.FileSize)
			errs++
		}
		if h.Width == 0 || h.Height == 0 {
			log.Addf(4, model.SeverityError, CheckZeroDimension, subject, "Zero dimensions: %s", dim)
			errs++
		}
	}
	stats.Read = len(infos)

	for _, dim := range dimOrder {
		if stats.Dimensions[dim] > stats.Dimensions[stats.Dominant] {
			stats.Dominant = dim
		}
	}

	switch {
	case len(dimOrder) > 1:
		for _, info := range infos {
			if dim := info.header.Dimension(); dim != stats.Dominant {
				log.Addf(4, model.SeverityWarn, CheckDimensionOutlier, model.ImageName(info.idx),
					"Non-standard dimension: %s (majority is %s)", dim, stats.Dominant)
			}
		}
		sum.addf("[!!] Mixed dimensions: %s", histogram(dimOrder, stats.Dimensions))
	case len(dimOrder) == 1:
		sum.addf("[OK] All %d PNGs have consistent dimensions: %s", len(infos), stats.Dominant)
	default:
		sum.addf("[OK] All %d PNGs have consistent dimensions: N/A", len(infos))
	}

	if len(infos) > 0 {
		var total int64
		minInfo, maxInfo := infos[0], infos[0]
		for _, info := range infos {
			total += info.header.FileSize
			if info.header.FileSize < minInfo.header.FileSize {
				minInfo = info
			}
			if info.header.FileSize > maxInfo.header.FileSize {
				maxInfo = info
			}
		}
		stats.MeanSize = float64(total) / float64(len(infos))
		avg := humanize.Comma(int64(stats.MeanSize + 0.5))
		sum.addf("File sizes: min=%sB (%s), max=%sB (%s), avg=%sB",
			humanize.Comma(minInfo.header.FileSize), model.ImageName(minInfo.idx),
			humanize.Comma(maxInfo.header.FileSize), model.ImageName(maxInfo.idx),
			avg)

		for _, info := range infos {
			size := float64(info.header.FileSize)
			switch {
			case size < stats.MeanSize*thresholds.SmallRatio:
				log.Addf(4, model.SeverityWarn, CheckSizeOutlier, model.ImageName(info.idx),
					"Unusually small: %sB (avg %sB)", humanize.Comma(info.header.FileSize), avg)
			case size > stats.MeanSize*thresholds.LargeRatio:
				log.Addf(4, model.SeverityWarn, CheckSizeOutlier, model.ImageName(info.idx),
					"Unusually large: %sB (avg %sB)", humanize.Comma(info.header.FileSize), avg)
			}
		}
	}

	if errs == 0 {
		sum.addf("[OK] All %d PNGs are valid", len(valid))
	} else {
		sum.addf("[!!] %d PNG validity errors", errs)
	}
	a.logger.Debug("Image statistics",
		zap.Int("read", stats.Read),
		zap.String("dominant", stats.Dominant),
		zap.Float64("mean_size", stats.MeanSize))
	return sum, stats
}

func histogram(order []string, counts map[string]int) string {
	parts := make([]string, len(order))
	for i, dim := range order {
		parts[i] = fmt.Sprintf("%s=%d", dim, counts[dim])
	}
	return strings.Join(parts, ", ")
}
