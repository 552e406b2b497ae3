package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/silexio/zping/config"
)

// ParseTargets parses target rows of the form "addr,count,interval" with
// rows separated by ';'. A trailing ';' is tolerated. Each argument may
// carry one row or several.
func ParseTargets(args []string) ([]config.Target, error) {
	var targets []config.Target
	for _, row := range strings.Split(strings.Join(args, ";"), ";") {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		target, err := parseTargetRow(row)
		if err != nil {
			return nil, fmt.Errorf("target row %q: %w", row, err)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func parseTargetRow(row string) (config.Target, error) {
	fields := strings.Split(row, ",")
	if len(fields) != 3 {
		return config.Target{}, fmt.Errorf("want addr,count,interval, got %d fields", len(fields))
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return config.Target{}, fmt.Errorf("count: %w", err)
	}
	interval, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return config.Target{}, fmt.Errorf("interval: %w", err)
	}
	target := config.Target{
		Addr:     strings.TrimSpace(fields[0]),
		Count:    count,
		Interval: interval,
	}
	if err := target.Validate(); err != nil {
		return config.Target{}, err
	}
	return target, nil
}
