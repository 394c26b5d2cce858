package scoring

// Result is the typed scoring engine response. MatchScore is passed through
// unmodified; its range is defined by the engine.
type Result struct {
	MatchScore    float64  `json:"matchScore"`
	ResumeSkills  []string `json:"resumeSkills"`
	JobSkills     []string `json:"jobSkills"`
	MissingSkills []string `json:"missingSkills"`
	Suggestions   []string `json:"suggestions"`
}

// Normalize replaces absent lists with empty ones. It is idempotent.
func Normalize(r Result) Result {
	r.ResumeSkills = nonNil(r.ResumeSkills)
	r.JobSkills = nonNil(r.JobSkills)
	r.MissingSkills = nonNil(r.MissingSkills)
	r.Suggestions = nonNil(r.Suggestions)
	return r
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type analyzeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}
