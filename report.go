package splint

// FileReport accumulates the definitions and finding counts for a single
// linted file. Counts are updated incrementally on every Add and always
// equal the sum over the stored definitions.
type FileReport struct {
	Path        string
	Definitions []Definition
	NumErrors   int
	NumWarnings int
}

// NewFileReport creates an empty report section for the given file path.
func NewFileReport(path string) *FileReport {
	return &FileReport{Path: path}
}

// Add records a definition with its errors and warnings.
func (r *FileReport) Add(def Definition) {
	r.Definitions = append(r.Definitions, def)
	r.NumErrors += len(def.Errors())
	r.NumWarnings += len(def.Warnings())
}

// HasIssues reports whether the file produced any findings.
func (r *FileReport) HasIssues() bool {
	return r.NumErrors+r.NumWarnings > 0
}

// Report collects the per-file sections of one lint run. It is a plain
// value with no hidden state: callers obtain a section from NewFile (or
// Append) and pass it explicitly to every Add. A Report must not be
// written from multiple goroutines; the parallel pipeline builds private
// FileReports per worker and merges them serially.
type Report struct {
	Files []*FileReport
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// NewFile opens a new per-file section and returns it.
func (r *Report) NewFile(path string) *FileReport {
	rf := NewFileReport(path)
	r.Files = append(r.Files, rf)
	return rf
}

// Append adds an externally built file section, e.g. one produced by a
// parallel worker or replayed from the findings cache.
func (r *Report) Append(rf *FileReport) {
	r.Files = append(r.Files, rf)
}

// Totals returns the error and warning counts summed across all files.
func (r *Report) Totals() (errors, warnings int) {
	for _, rf := range r.Files {
		errors += rf.NumErrors
		warnings += rf.NumWarnings
	}
	return errors, warnings
}
