package corpus

import (
	"path/filepath"
	"strings"
)

// GlobalDirName is the cross-source partition of the output tree.
const GlobalDirName = "todas_las_plataformas"

// Layout resolves every corpus path from one outputs root. Careers and
// query terms embed in filenames with spaces replaced by underscores.
type Layout struct {
	OutputsDir string
}

func slug(s string) string { return strings.ReplaceAll(s, " ", "_") }

func (l Layout) SourceDir(source string) string {
	return filepath.Join(l.OutputsDir, source)
}

func (l Layout) CareerDir(source, career string) string {
	return filepath.Join(l.OutputsDir, source, slug(career))
}

// DailyFile is the per-(source, career, query, day) run file.
func (l Layout) DailyFile(source, career, query, date string) string {
	return filepath.Join(l.CareerDir(source, career),
		source+"__"+slug(query)+"__"+date+".csv")
}

// DailyPattern globs every query's run file for one day.
func (l Layout) DailyPattern(source, career, date string) string {
	return filepath.Join(l.CareerDir(source, career),
		source+"__*__"+date+".csv")
}

func (l Layout) MergedDir(source, career string) string {
	return filepath.Join(l.CareerDir(source, career), "corpus_unido")
}

// MergedFile is the per-(source, career, day) consolidated file.
func (l Layout) MergedFile(source, career, date string) string {
	return filepath.Join(l.MergedDir(source, career),
		source+"__"+slug(career)+"__"+date+"__merged.csv")
}

// MergedPattern globs all consolidated dailies for a (source, career).
func (l Layout) MergedPattern(source, career string) string {
	return filepath.Join(l.MergedDir(source, career),
		source+"__"+slug(career)+"__*__merged.csv")
}

// AccumulatedFile is the all-days union for a (source, career).
func (l Layout) AccumulatedFile(source, career string) string {
	return filepath.Join(l.MergedDir(source, career),
		source+"__"+slug(career)+"__acumulado.csv")
}

func (l Layout) GlobalCareerDir(career string) string {
	return filepath.Join(l.OutputsDir, GlobalDirName, slug(career))
}

// GlobalMergedFile is the cross-source output for one career.
func (l Layout) GlobalMergedFile(career string) string {
	return filepath.Join(l.GlobalCareerDir(career), slug(career)+"_Merged.csv")
}
