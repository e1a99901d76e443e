// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"placement-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	taskType := fs.String("taskType", "", "Zeebe task type (e.g., compute-home-matches)")
	displayName := fs.String("displayName", "", "Display name")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "placement", "Category")
	timeout := fs.Int("timeout", 10000, "Job timeout in milliseconds")
	retries := fs.Int("retries", 3, "Retries")
	errorCodes := fs.String("errorCodes", "", "Comma separated BPMN error codes")
	fs.Parse(args)

	if *taskType == "" || *displayName == "" {
		fs.Usage()
		return errors.New("taskType and displayName are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if errors.Is(err, os.ErrNotExist) {
		reg, err = &registry.ActivityRegistry{Version: "1.0.0"}, nil
	}
	if err != nil {
		return err
	}

	if _, exists := reg.Lookup(*taskType); exists {
		return fmt.Errorf("activity %s already exists", *taskType)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		TaskType:    *taskType,
		DisplayName: *displayName,
		Description: *description,
		Category:    *category,
		Timeout:     *timeout,
		Retries:     *retries,
		ErrorCodes:  splitList(*errorCodes),
	})
	if err := save(reg, *path); err != nil {
		return err
	}

	fmt.Printf("Added activity: %s\n", *taskType)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	taskType := fs.String("taskType", "", "Task type to update")
	field := fs.String("field", "", "Field to update")
	value := fs.String("value", "", "New value for the field")
	fs.Parse(args)

	if *taskType == "" || *field == "" {
		fs.Usage()
		return errors.New("taskType and field are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}

	for i := range reg.Activities {
		if reg.Activities[i].TaskType != *taskType {
			continue
		}
		if err := setField(&reg.Activities[i], *field, *value); err != nil {
			return err
		}
		if err := save(reg, *path); err != nil {
			return err
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *taskType, *field, *value)
		return nil
	}

	return fmt.Errorf("activity %s not found", *taskType)
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func setField(a *registry.Activity, field, value string) error {
	switch field {
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "errorCodes":
		a.ErrorCodes = splitList(value)
	case "timeout", "retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", field, err)
		}
		if field == "timeout" {
			a.Timeout = n
		} else {
			a.Retries = n
		}
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func save(reg *registry.ActivityRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format("2006-01-02")
	return registry.SaveRegistry(reg, path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -taskType compute-home-matches -displayName "Compute Home Matches" -timeout 30000
  registry-updater update -taskType compute-home-matches -field retries -value 5
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
