// Package loader reads an experiment definition: a YAML configuration file
// naming the model, condition and measurement tables, plus the TSV tables
// themselves.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/cellrun/cellrun/model/table"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Column names recognised in the input tables.
const (
	columnConditionID      = "conditionId"
	columnConditionName    = "conditionName"
	columnSimulationID     = "simulationConditionId"
	columnPreequilibration = "preequilibrationConditionId"
	columnDataset          = "datasetId"
	columnTime             = "time"
)

// Experiment is the YAML experiment definition. Table and model locations
// are resolved relative to the definition file.
type Experiment struct {
	Name         string   `yaml:"name,omitempty"`
	CellCount    int      `yaml:"cellCount,omitempty"`
	Workers      int      `yaml:"workers,omitempty"`
	Conditions   string   `yaml:"conditions"`
	Measurements string   `yaml:"measurements"`
	Models       []string `yaml:"models,omitempty"`
	Output       string   `yaml:"output,omitempty"`
	Cache        string   `yaml:"cache,omitempty"`
}

// Problem bundles a loaded experiment with its parsed tables.
type Problem struct {
	Experiment   *Experiment
	Conditions   table.Conditions
	Measurements *table.Measurements
}

// Service loads experiment definitions through the abstract file system.
type Service struct {
	fs afs.Service
}

// New creates a loader service.
func New() *Service {
	return &Service{fs: afs.New()}
}

// Load reads the experiment definition at URL and its tables.
func (s *Service) Load(ctx context.Context, URL string) (*Problem, error) {
	data, err := s.fs.DownloadWithURL(ctx, url.Normalize(URL, file.Scheme))
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment definition %s: %w", URL, err)
	}
	experiment := &Experiment{}
	if err := yaml.Unmarshal(data, experiment); err != nil {
		return nil, fmt.Errorf("failed to parse experiment definition %s: %w", URL, err)
	}
	if experiment.Conditions == "" || experiment.Measurements == "" {
		return nil, fmt.Errorf("experiment definition %s must name conditions and measurements tables", URL)
	}
	baseURL, _ := url.Split(url.Normalize(URL, file.Scheme), file.Scheme)
	experiment.Conditions = resolve(baseURL, experiment.Conditions)
	experiment.Measurements = resolve(baseURL, experiment.Measurements)
	for i, model := range experiment.Models {
		experiment.Models[i] = resolve(baseURL, model)
	}
	if experiment.Output != "" {
		experiment.Output = resolve(baseURL, experiment.Output)
	}
	if experiment.Cache != "" {
		experiment.Cache = resolve(baseURL, experiment.Cache)
	}

	conditions, err := s.LoadConditions(ctx, experiment.Conditions)
	if err != nil {
		return nil, err
	}
	measurements, err := s.LoadMeasurements(ctx, experiment.Measurements)
	if err != nil {
		return nil, err
	}
	return &Problem{Experiment: experiment, Conditions: conditions, Measurements: measurements}, nil
}

// LoadConditions reads a TSV conditions table: a conditionId column, an
// optional conditionName column and one column per overridden variable.
func (s *Service) LoadConditions(ctx context.Context, URL string) (table.Conditions, error) {
	header, records, err := s.readTable(ctx, URL)
	if err != nil {
		return nil, err
	}
	idColumn := columnIndex(header, columnConditionID)
	if idColumn < 0 {
		return nil, fmt.Errorf("conditions table %s has no %s column", URL, columnConditionID)
	}
	nameColumn := columnIndex(header, columnConditionName)

	var conditions table.Conditions
	for row, record := range records {
		condition := &table.Condition{ID: record[idColumn], Overrides: map[string]float64{}}
		if condition.ID == "" {
			return nil, fmt.Errorf("conditions table %s row %v has an empty %s", URL, row+2, columnConditionID)
		}
		if nameColumn >= 0 {
			condition.Name = record[nameColumn]
		}
		for column, value := range record {
			if column == idColumn || column == nameColumn || value == "" {
				continue
			}
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("conditions table %s row %v column %q: invalid value %q: %w", URL, row+2, header[column], value, err)
			}
			condition.Overrides[header[column]] = parsed
		}
		conditions = append(conditions, condition)
	}
	return conditions, nil
}

// LoadMeasurements reads a TSV measurement table.
func (s *Service) LoadMeasurements(ctx context.Context, URL string) (*table.Measurements, error) {
	header, records, err := s.readTable(ctx, URL)
	if err != nil {
		return nil, err
	}
	simColumn := columnIndex(header, columnSimulationID)
	timeColumn := columnIndex(header, columnTime)
	if simColumn < 0 || timeColumn < 0 {
		return nil, fmt.Errorf("measurement table %s must have %s and %s columns", URL, columnSimulationID, columnTime)
	}
	preColumn := columnIndex(header, columnPreequilibration)
	datasetColumn := columnIndex(header, columnDataset)

	measurements := &table.Measurements{
		HasPreequilibration: preColumn >= 0,
		HasDataset:          datasetColumn >= 0,
	}
	for row, record := range records {
		measurement := &table.Measurement{SimulationConditionID: record[simColumn]}
		measurement.Time, err = strconv.ParseFloat(record[timeColumn], 64)
		if err != nil {
			return nil, fmt.Errorf("measurement table %s row %v: invalid time %q: %w", URL, row+2, record[timeColumn], err)
		}
		if preColumn >= 0 {
			measurement.PreequilibrationConditionID = record[preColumn]
		}
		if datasetColumn >= 0 {
			measurement.DatasetID = record[datasetColumn]
		}
		measurements.Rows = append(measurements.Rows, measurement)
	}
	return measurements, nil
}

// readTable reads a tab-separated table and returns its header and rows.
func (s *Service) readTable(ctx context.Context, URL string) ([]string, [][]string, error) {
	data, err := s.fs.DownloadWithURL(ctx, url.Normalize(URL, file.Scheme))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table %s: %w", URL, err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse table %s: %w", URL, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("table %s is empty", URL)
	}
	return records[0], records[1:], nil
}

func columnIndex(header []string, name string) int {
	for i, column := range header {
		if column == name {
			return i
		}
	}
	return -1
}

// resolve joins a possibly relative location with the experiment base URL.
func resolve(baseURL, location string) string {
	if strings.Contains(location, "://") || path.IsAbs(location) {
		return location
	}
	return url.Join(baseURL, location)
}
