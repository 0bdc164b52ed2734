package audit

import (
	"fmt"

	"go.uber.org/zap"

	"assetaudit/internal/model"
)

// Check identifiers. They key the severity policy and tag each Issue.
const (
	CheckImageMissing  = "image_missing"
	CheckRecordMissing = "record_missing"
	CheckSequenceGap   = "sequence_gap"

	CheckRecordUnparsable  = "record_unparsable"
	CheckNameMismatch      = "name_mismatch"
	CheckImageMismatch     = "image_field_mismatch"
	CheckFilesMissing      = "files_missing"
	CheckURIMismatch       = "uri_mismatch"
	CheckFileTypeMismatch  = "file_type_mismatch"
	CheckSymbolMismatch    = "symbol_mismatch"
	CheckRoyaltyMismatch   = "royalty_mismatch"
	CheckCreatorsMissing   = "creators_missing"
	CheckCreatorAddress    = "creator_address_mismatch"
	CheckCreatorShare      = "creator_share_mismatch"
	CheckAttributesMissing = "attributes_missing"
	CheckTraitTypeMissing  = "trait_type_missing"
	CheckEmptyValue        = "empty_value"
	CheckUnknownTraitType  = "unknown_trait_type"
	CheckUnusualValue      = "unusual_value"
	CheckRequiredTrait     = "missing_required_trait"
	CheckDuplicateTrait    = "duplicate_trait"

	CheckInvalidImage     = "invalid_image"
	CheckImageTooSmall    = "image_too_small"
	CheckZeroDimension    = "zero_dimension"
	CheckDimensionOutlier = "dimension_outlier"
	CheckSizeOutlier      = "size_outlier"

	CheckIndexMapUnreadable = "index_map_unreadable"
	CheckSourceMissing      = "source_missing"
	CheckBackupOnlyMain     = "backup_only_main"
	CheckBackupOnlyBackup   = "backup_only_backup"
	CheckBackupDiffers      = "backup_differs"
	CheckBackupImageSize    = "backup_image_size"
	CheckAuditUnreadable    = "audit_unreadable"
	CheckAuditCount         = "audit_count_mismatch"
	CheckTraitCountDrift    = "trait_count_drift"
	CheckTraitValuesDrift   = "trait_values_drift"
)

// Policy resolves the severity of a check; *config.Config implements it.
type Policy interface {
	SeverityFor(check string, def model.Severity) model.Severity
}

// IssueLog is the append-only, ordered record of findings for one run.
type IssueLog struct {
	issues []model.Issue
	policy Policy
	logger *zap.Logger
}

// NewIssueLog returns an empty log. A nil policy keeps default severities.
func NewIssueLog(policy Policy, logger *zap.Logger) *IssueLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueLog{policy: policy, logger: logger}
}

// Add appends an issue. def is the severity used unless the policy overrides it.
func (l *IssueLog) Add(pass int, def model.Severity, check, subject, description string) {
	sev := def
	if l.policy != nil {
		sev = l.policy.SeverityFor(check, def)
	}
	l.issues = append(l.issues, model.Issue{
		Pass:        pass,
		Severity:    sev,
		Check:       check,
		Subject:     subject,
		Description: description,
	})
	l.logger.Debug("Issue logged",
		zap.Int("pass", pass),
		zap.String("severity", string(sev)),
		zap.String("check", check),
		zap.String("subject", subject))
}

// Addf is Add with a formatted description.
func (l *IssueLog) Addf(pass int, def model.Severity, check, subject, format string, args ...any) {
	l.Add(pass, def, check, subject, fmt.Sprintf(format, args...))
}

// Len returns the number of issues logged so far.
func (l *IssueLog) Len() int {
	return len(l.issues)
}

// Issues returns a copy of all issues in append order.
func (l *IssueLog) Issues() []model.Issue {
	out := make([]model.Issue, len(l.issues))
	copy(out, l.issues)
	return out
}

// BySeverity returns the issues of one severity in append order.
func (l *IssueLog) BySeverity(sev model.Severity) []model.Issue {
	return l.filter(func(i model.Issue) bool { return i.Severity == sev })
}

// ForPass returns the issues of one pass in append order.
func (l *IssueLog) ForPass(pass int) []model.Issue {
	return l.filter(func(i model.Issue) bool { return i.Pass == pass })
}

// ByCheck returns the issues raised by one check in append order.
func (l *IssueLog) ByCheck(check string) []model.Issue {
	return l.filter(func(i model.Issue) bool { return i.Check == check })
}

// Counts returns the number of issues per severity.
func (l *IssueLog) Counts() map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, i := range l.issues {
		counts[i.Severity]++
	}
	return counts
}

func (l *IssueLog) filter(keep func(model.Issue) bool) []model.Issue {
	var out []model.Issue
	for _, i := range l.issues {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}
