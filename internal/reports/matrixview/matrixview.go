// Package matrixview filters and sorts a status matrix snapshot for display.
package matrixview

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"vitelis_backend/internal/reports/transport"
)

// SortByCompany sorts rows by company name. Any other SortBy value is read as
// a step id and sorts by that column's status severity.
const SortByCompany = "company"

// Options narrows and orders the matrix.
type Options struct {
	Search    string
	Statuses  []string
	StepIDs   []uuid.UUID
	SortBy    string
	SortOrder string
}

var severity = map[string]int{
	"DONE":       0,
	"PENDING":    1,
	"PROCESSING": 2,
	"ERROR":      3,
}

// Severity ranks a status, ERROR highest.
func Severity(status string) int {
	return severity[status]
}

// fold builds a fresh Caser per call; Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Apply returns a filtered, sorted copy of m. The input is not modified.
func Apply(m transport.StepsMatrixResponse, opts Options) transport.StepsMatrixResponse {
	visible := visibleSteps(m.Steps, opts.StepIDs)
	statusSet := make(map[string]struct{}, len(opts.Statuses))
	for _, s := range opts.Statuses {
		statusSet[s] = struct{}{}
	}
	needle := fold(strings.TrimSpace(opts.Search))

	out := transport.StepsMatrixResponse{
		Companies: make([]transport.MatrixCompany, 0, len(m.Companies)),
		Steps:     make([]transport.MatrixStep, 0, len(m.Steps)),
		Matrix:    make([]transport.MatrixRow, 0, len(m.Matrix)),
	}
	for _, s := range m.Steps {
		if _, ok := visible[s.StepID]; ok {
			out.Steps = append(out.Steps, s)
		}
	}

	for _, row := range m.Matrix {
		if needle != "" && !matchesSearch(row, needle) {
			continue
		}
		cells := make([]transport.MatrixCell, 0, len(row.Cells))
		matched := len(statusSet) == 0
		for _, cell := range row.Cells {
			if _, ok := visible[cell.StepID]; !ok {
				continue
			}
			cells = append(cells, cell)
			if _, ok := statusSet[cell.Status]; ok {
				matched = true
			}
		}
		if !matched {
			continue
		}
		out.Matrix = append(out.Matrix, transport.MatrixRow{CompanyID: row.CompanyID, CompanyName: row.CompanyName, Cells: cells})
	}

	sortRows(out.Matrix, opts.SortBy, opts.SortOrder == "desc")

	for _, row := range out.Matrix {
		out.Companies = append(out.Companies, transport.MatrixCompany{CompanyID: row.CompanyID, Name: row.CompanyName})
	}
	return out
}

func visibleSteps(steps []transport.MatrixStep, subset []uuid.UUID) map[uuid.UUID]struct{} {
	visible := make(map[uuid.UUID]struct{}, len(steps))
	if len(subset) == 0 {
		for _, s := range steps {
			visible[s.StepID] = struct{}{}
		}
		return visible
	}
	for _, id := range subset {
		visible[id] = struct{}{}
	}
	return visible
}

func matchesSearch(row transport.MatrixRow, needle string) bool {
	return strings.Contains(fold(row.CompanyName), needle) ||
		strings.Contains(row.CompanyID.String(), needle)
}

func sortRows(rows []transport.MatrixRow, sortBy string, desc bool) {
	if sortBy == "" || sortBy == SortByCompany {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := fold(rows[i].CompanyName), fold(rows[j].CompanyName)
			if desc {
				return a > b
			}
			return a < b
		})
		return
	}

	stepID, err := uuid.Parse(sortBy)
	if err != nil {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := Severity(cellStatus(rows[i], stepID)), Severity(cellStatus(rows[j], stepID))
		if a == b {
			return fold(rows[i].CompanyName) < fold(rows[j].CompanyName)
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func cellStatus(row transport.MatrixRow, stepID uuid.UUID) string {
	for _, c := range row.Cells {
		if c.StepID == stepID {
			return c.Status
		}
	}
	return "PENDING"
}
