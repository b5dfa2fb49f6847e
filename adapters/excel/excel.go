// Package excel reads cost-survey and GDP workbooks that replace the embedded
// assumptions. Sheets are located by name, falling back to the first sheet
// whose header row carries the required columns.
package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cost-projections/core/catalog"
	"cost-projections/core/gdp"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// Sheet names looked up first
const (
	SurveySheet = "survey"
	GDPSheet    = "gdp"
)

var (
	surveyColumns = []string{"version", "technology", "region", "year", "capital", "om"}
	gdpColumns    = []string{"scenario", "region", "year", "gdp_per_capita"}
)

// ReadSurvey loads survey costs from a workbook
func ReadSurvey(path string) (*catalog.Survey, error) {
	rows, cols, err := readTable(path, SurveySheet, surveyColumns)
	if err != nil {
		return nil, err
	}

	s := catalog.NewSurvey()
	for i, row := range rows {
		line := i + 2
		year, err := intCell(row, cols["year"], line)
		if err != nil {
			return nil, err
		}
		capital, err := floatCell(row, cols["capital"], line)
		if err != nil {
			return nil, err
		}
		om, err := floatCell(row, cols["om"], line)
		if err != nil {
			return nil, err
		}
		s.Add(catalog.SurveyCost{
			Version:    strings.ToLower(cell(row, cols["version"])),
			Technology: strings.ToLower(cell(row, cols["technology"])),
			Region:     strings.ToLower(cell(row, cols["region"])),
			Year:       year,
			Capital:    capital,
			OM:         om,
		})
	}
	if s.Len() == 0 {
		return nil, errors.Data("survey workbook has no cost rows").WithContext("path", path)
	}

	logging.Info("survey workbook loaded",
		zap.String("path", path),
		zap.Int("entries", s.Len()),
		zap.Strings("versions", s.Versions()))
	return s, nil
}

// ReadGDP loads GDP per capita observations from a workbook
func ReadGDP(path string) ([]gdp.Observation, error) {
	rows, cols, err := readTable(path, GDPSheet, gdpColumns)
	if err != nil {
		return nil, err
	}

	obs := make([]gdp.Observation, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		year, err := intCell(row, cols["year"], line)
		if err != nil {
			return nil, err
		}
		value, err := floatCell(row, cols["gdp_per_capita"], line)
		if err != nil {
			return nil, err
		}
		obs = append(obs, gdp.Observation{
			Scenario: cell(row, cols["scenario"]),
			Region:   cell(row, cols["region"]),
			Year:     year,
			Value:    value,
		})
	}

	logging.Info("GDP workbook loaded", zap.String("path", path), zap.Int("observations", len(obs)))
	return obs, nil
}

// readTable returns the non-empty data rows below the header and the index of
// each required column.
func readTable(path, sheet string, required []string) ([][]string, map[string]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, errors.Parsing("failed to open workbook "+path, err)
	}
	defer f.Close()

	candidates := []string{sheet}
	for _, name := range f.GetSheetList() {
		if !strings.EqualFold(name, sheet) {
			candidates = append(candidates, name)
		}
	}

	for _, name := range candidates {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		cols, ok := columnMap(rows[0], required)
		if !ok {
			continue
		}
		logging.Debug("workbook sheet found", zap.String("path", path), zap.String("sheet", name))

		data := make([][]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if !blank(row) {
				data = append(data, row)
			}
		}
		return data, cols, nil
	}

	return nil, nil, errors.Newf(errors.TypeParsing, "no sheet in %s has columns %s",
		path, strings.Join(required, ", "))
}

func columnMap(header, required []string) (map[string]int, bool) {
	cols := make(map[string]int, len(required))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, r := range required {
		if _, ok := cols[r]; !ok {
			return nil, false
		}
	}
	return cols, true
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func floatCell(row []string, i, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, i), ",", ""), 64)
	if err != nil {
		return 0, errors.Parsing("row "+strconv.Itoa(line)+": invalid number", err)
	}
	return v, nil
}

func intCell(row []string, i, line int) (int, error) {
	v, err := floatCell(row, i, line)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
