package audit

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"assetaudit/internal/model"
	"assetaudit/internal/store"
)

// CheckRecords is PASS 2: every record's identity fields must point at its
// own index and its descriptive fields must carry the collection constants.
// Identity fields (name, image, uri, creator address) are ERROR, descriptive
// ones WARN, unless the severity policy says otherwise.
func (a *Auditor) CheckRecords(dir *store.Dir, valid []int, log *IssueLog) PassSummary {
	sum := PassSummary{Pass: 2, Title: "Record Internal Consistency — name, image, uri fields"}
	coll := a.cfg.Collection
	before := log.Len()

	for _, idx := range valid {
		subject := model.RecordName(idx)
		rec, err := dir.LoadRecord(idx)
		if err != nil {
			log.Addf(2, model.SeverityError, CheckRecordUnparsable, subject, "Cannot parse JSON: %v", err)
			continue
		}

		expectedName := a.cfg.ExpectedName(idx)
		if name := rec.Get("name"); name.String() != expectedName || name.Type != gjson.String {
			log.Addf(2, model.SeverityError, CheckNameMismatch, subject,
				"Name mismatch: expected '%s', got '%s'", expectedName, show(name))
		}

		expectedImage := model.ImageName(idx)
		if image := rec.Get("image"); image.String() != expectedImage || image.Type != gjson.String {
			log.Addf(2, model.SeverityError, CheckImageMismatch, subject,
				"Image field mismatch: expected '%s', got '%s'", expectedImage, show(image))
		}

		files := array(rec.Get("properties.files"))
		if len(files) == 0 {
			log.Add(2, model.SeverityError, CheckFilesMissing, subject, "Missing properties.files array")
		} else {
			if uri := files[0].Get("uri"); uri.String() != expectedImage {
				log.Addf(2, model.SeverityError, CheckURIMismatch, subject,
					"File URI mismatch: expected '%s', got '%s'", expectedImage, show(uri))
			}
			if ftype := files[0].Get("type"); ftype.String() != coll.FileType {
				log.Addf(2, model.SeverityWarn, CheckFileTypeMismatch, subject,
					"File type is '%s' instead of '%s'", show(ftype), coll.FileType)
			}
		}

		if symbol := rec.Get("symbol"); symbol.Type != gjson.String || symbol.String() != coll.Symbol {
			log.Addf(2, model.SeverityWarn, CheckSymbolMismatch, subject,
				"Symbol is '%s' (expected '%s')", show(symbol), coll.Symbol)
		}

		if fee := rec.Get("seller_fee_basis_points"); !isInt(fee, coll.SellerFeeBasisPoints) {
			log.Addf(2, model.SeverityWarn, CheckRoyaltyMismatch, subject,
				"seller_fee_basis_points is %s (expected %d)", show(fee), coll.SellerFeeBasisPoints)
		}

		creators := array(rec.Get("properties.creators"))
		switch {
		case len(creators) == 0:
			log.Add(2, model.SeverityError, CheckCreatorsMissing, subject, "Missing creators")
		case creators[0].Get("address").String() != coll.CreatorAddress:
			log.Addf(2, model.SeverityError, CheckCreatorAddress, subject,
				"Creator address wrong: expected '%s', got '%s'", coll.CreatorAddress, show(creators[0].Get("address")))
		case !isInt(creators[0].Get("share"), coll.CreatorShare):
			log.Addf(2, model.SeverityWarn, CheckCreatorShare, subject,
				"Creator share is %s (expected %d)", show(creators[0].Get("share")), coll.CreatorShare)
		}
	}

	if found := log.Len() - before; found == 0 {
		sum.addf("[OK] All %d records have correct internal references", len(valid))
	} else {
		sum.addf("[!!] Found %d issues in internal consistency", found)
		a.logger.Debug("Record consistency issues", zap.Int("count", found))
	}
	return sum
}

// show renders a value for an issue description.
func show(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "<missing>"
	case r.Type == gjson.String:
		return r.String()
	default:
		return r.Raw
	}
}

// array returns the elements of r, or nil when r is not a JSON array.
func array(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

// isInt reports whether r is the JSON number want.
func isInt(r gjson.Result, want int64) bool {
	return r.Type == gjson.Number && r.Num == float64(want)
}
