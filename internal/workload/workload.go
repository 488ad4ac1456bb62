// Package workload parses the plain-text job list: one process per line,
// four whitespace-separated fields.
package workload

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Job is a single unscheduled row from the workload file.
type Job struct {
	Arrival int
	Name    string
	Service int
	Memory  int
}

// Load reads and parses the workload file at path. Rows are expected sorted
// by arrival time ascending with file order preserved for ties; Load
// stable-sorts defensively so a scheduler run never depends on the file
// already satisfying that property.
func Load(path string) ([]Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening workload file %s: %w", path, err)
	}
	defer f.Close()

	var jobs []Job
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		job, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed parsing workload file %s, line %d: %w", path, lineNo, err)
		}
		jobs = append(jobs, job)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading workload file %s: %w", path, err)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Arrival < jobs[j].Arrival
	})

	return jobs, nil
}

func parseLine(line string) (Job, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Job{}, fmt.Errorf("expected 4 fields (arrival name service memory), got %d", len(fields))
	}

	arrival, err := strconv.Atoi(fields[0])
	if err != nil {
		return Job{}, fmt.Errorf("invalid arrival_time %q: %w", fields[0], err)
	}
	name := fields[1]
	if len(name) == 0 || len(name) > 8 {
		return Job{}, fmt.Errorf("process name %q must be 1-8 characters", name)
	}
	service, err := strconv.Atoi(fields[2])
	if err != nil {
		return Job{}, fmt.Errorf("invalid service_time %q: %w", fields[2], err)
	}
	memory, err := strconv.Atoi(fields[3])
	if err != nil {
		return Job{}, fmt.Errorf("invalid memory_requirement %q: %w", fields[3], err)
	}

	if arrival < 0 {
		return Job{}, fmt.Errorf("arrival_time must be non-negative, got %d", arrival)
	}
	if service <= 0 {
		return Job{}, fmt.Errorf("service_time must be positive, got %d", service)
	}
	if memory <= 0 {
		return Job{}, fmt.Errorf("memory_requirement must be positive, got %d", memory)
	}

	return Job{Arrival: arrival, Name: name, Service: service, Memory: memory}, nil
}
