package email

const (
	subjectAnalysisFinishedFmt = "Your analysis of %s is ready"
	subjectAnalysisFailedFmt   = "Your analysis of %s could not be completed"
)
