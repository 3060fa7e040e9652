package analyzer

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
	"github.com/yourbasic/graph"
)

// Table categories reported by the analyzer
const (
	CategoryStandalone = "Standalone"
	CategoryDependent  = "Dependent"
	CategoryLink       = "Link"
	CategoryCircular   = "Circular"
)

// RelationshipAnalyzer inspects the declared foreign keys between output
// tables and orders them so that referenced tables come first
type RelationshipAnalyzer struct {
	Tables             []string
	ForeignKeys        map[string][]models.ForeignKey
	PrimaryKeys        map[string]string
	RowCounts          map[string]int
	LinkTables         map[string]bool
	DependencyGraph    *graph.Mutable
	TableIndexMap      map[string]int
	IndexTableMap      map[int]string
	DirectCircularDeps [][]string
	Logger             *logrus.Logger
}

// NewRelationshipAnalyzer creates a new relationship analyzer
func NewRelationshipAnalyzer(logger *logrus.Logger) *RelationshipAnalyzer {
	return &RelationshipAnalyzer{
		ForeignKeys:   make(map[string][]models.ForeignKey),
		PrimaryKeys:   make(map[string]string),
		RowCounts:     make(map[string]int),
		LinkTables:    make(map[string]bool),
		TableIndexMap: make(map[string]int),
		IndexTableMap: make(map[int]string),
		Logger:        logger,
	}
}

// Analyze records the tables of result and builds the dependency graph.
// An edge runs from a referenced table to each table referencing it.
func (ra *RelationshipAnalyzer) Analyze(result *models.Result) {
	for i, t := range result.Tables {
		ra.Tables = append(ra.Tables, t.Name)
		ra.TableIndexMap[t.Name] = i
		ra.IndexTableMap[i] = t.Name
		ra.RowCounts[t.Name] = len(t.Rows)
		if t.PrimaryKey != "" {
			ra.PrimaryKeys[t.Name] = t.PrimaryKey
		}
		if len(t.ForeignKeys) > 0 {
			ra.ForeignKeys[t.Name] = append([]models.ForeignKey(nil), t.ForeignKeys...)
		}
	}

	ra.DependencyGraph = graph.New(len(ra.Tables))
	for table, fks := range ra.ForeignKeys {
		src := ra.TableIndexMap[table]
		for _, fk := range fks {
			dest, ok := ra.TableIndexMap[fk.ReferencedTable]
			if !ok {
				ra.Logger.Debugf("Table %s references unknown table %s", table, fk.ReferencedTable)
				continue
			}
			if dest == src {
				continue
			}
			ra.DependencyGraph.AddCost(dest, src, 1)
		}
	}

	ra.detectLinkTables()
}

// detectLinkTables flags tables without a primary key whose foreign keys
// point at two or more distinct tables
func (ra *RelationshipAnalyzer) detectLinkTables() {
	for _, table := range ra.Tables {
		if ra.PrimaryKeys[table] != "" {
			continue
		}
		referenced := make(map[string]bool)
		for _, fk := range ra.ForeignKeys[table] {
			referenced[fk.ReferencedTable] = true
		}
		if len(referenced) >= 2 {
			ra.LinkTables[table] = true
		}
	}
}

// GetCircularTables returns tables that sit on a dependency cycle
func (ra *RelationshipAnalyzer) GetCircularTables() map[string]bool {
	circular := make(map[string]bool)
	ra.DirectCircularDeps = [][]string{}
	if ra.DependencyGraph == nil {
		return circular
	}

	for _, component := range graph.StrongComponents(ra.DependencyGraph) {
		if len(component) < 2 {
			continue
		}
		for _, v := range component {
			circular[ra.IndexTableMap[v]] = true
		}
	}

	for i := 0; i < len(ra.Tables); i++ {
		for j := i + 1; j < len(ra.Tables); j++ {
			if ra.DependencyGraph.Edge(i, j) && ra.DependencyGraph.Edge(j, i) {
				ra.DirectCircularDeps = append(ra.DirectCircularDeps, []string{ra.IndexTableMap[i], ra.IndexTableMap[j]})
			}
		}
	}
	return circular
}

// GetTableInsertionOrder orders tables so that every referenced table is
// loaded before the tables referencing it. Ties keep the output order.
// Circular tables follow in name order and link tables come last.
func (ra *RelationshipAnalyzer) GetTableInsertionOrder() ([]string, map[string]bool) {
	circular := ra.GetCircularTables()

	inDegree := make(map[string]int)
	for table, fks := range ra.ForeignKeys {
		if circular[table] {
			continue
		}
		seen := make(map[string]bool)
		for _, fk := range fks {
			ref := fk.ReferencedTable
			if ref == table || circular[ref] || seen[ref] {
				continue
			}
			if _, known := ra.TableIndexMap[ref]; !known {
				continue
			}
			seen[ref] = true
			inDegree[table]++
		}
	}

	var ordered []string
	added := make(map[string]bool)
	for len(added) < len(ra.Tables)-len(circular) {
		progressed := false
		for _, table := range ra.Tables {
			if added[table] || circular[table] || inDegree[table] > 0 {
				continue
			}
			ordered = append(ordered, table)
			added[table] = true
			progressed = true

			src := ra.TableIndexMap[table]
			ra.DependencyGraph.Visit(src, func(w int, _ int64) bool {
				inDegree[ra.IndexTableMap[w]]--
				return false
			})
			break
		}
		if !progressed {
			break
		}
	}

	var circularList []string
	for table := range circular {
		circularList = append(circularList, table)
	}
	sort.Strings(circularList)
	ordered = append(ordered, circularList...)

	var final, links []string
	for _, table := range ordered {
		if ra.LinkTables[table] {
			links = append(links, table)
		} else {
			final = append(final, table)
		}
	}
	return append(final, links...), circular
}

// Category classifies a table for reporting
func (ra *RelationshipAnalyzer) Category(table string, circular map[string]bool) string {
	switch {
	case ra.LinkTables[table]:
		return CategoryLink
	case circular[table]:
		return CategoryCircular
	case len(ra.ForeignKeys[table]) > 0:
		return CategoryDependent
	}
	return CategoryStandalone
}
