// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pos-onboarding-workers/internal/agents"
	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/errors"
	getopportunity "pos-onboarding-workers/internal/workers/crm/get-opportunity"
	updateopportunity "pos-onboarding-workers/internal/workers/crm/update-opportunity"
	extractbankstatement "pos-onboarding-workers/internal/workers/kyc/extract-bank-statement"
	extractdriverslicense "pos-onboarding-workers/internal/workers/kyc/extract-drivers-license"
	screendriverslicense "pos-onboarding-workers/internal/workers/kyc/screen-drivers-license"
	verifyidentity "pos-onboarding-workers/internal/workers/kyc/verify-identity"
	advancestage "pos-onboarding-workers/internal/workers/onboarding/advance-stage"
	findbusiness "pos-onboarding-workers/internal/workers/qualify/find-business"
	identifydevice "pos-onboarding-workers/internal/workers/recommend/identify-device"
	knowledgesearch "pos-onboarding-workers/internal/workers/recommend/knowledge-search"
	visualizedevice "pos-onboarding-workers/internal/workers/recommend/visualize-device"
	websearch "pos-onboarding-workers/internal/workers/recommend/web-search"
	"pos-onboarding-workers/pkg/registry"
)

// entry is the static part of an activity. Everything else comes from the
// worker package, the agent descriptors and the worker config.
type entry struct {
	taskType    string
	displayName string
	input       func() []byte
	output      func() []byte
	errorCodes  []errors.ErrorCode
}

var catalog = []entry{
	{findbusiness.TaskType, "Find Business", findbusiness.GetInputSchema, findbusiness.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeServiceNotConfigured, errors.ErrCodePlaceSearchFailed}},
	{identifydevice.TaskType, "Identify POS Device", identifydevice.GetInputSchema, identifydevice.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeImageMissing, errors.ErrCodeImageUnreadable, errors.ErrCodeModelCallFailed, errors.ErrCodeModelTimeout}},
	{visualizedevice.TaskType, "Visualize POS Device", visualizedevice.GetInputSchema, visualizedevice.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeArtifactNotFound, errors.ErrCodeImageUnreadable, errors.ErrCodeModelCallFailed, errors.ErrCodeModelTimeout}},
	{knowledgesearch.TaskType, "Search Product Knowledge", knowledgesearch.GetInputSchema, knowledgesearch.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeServiceNotConfigured, errors.ErrCodeKnowledgeSearchFailed}},
	{websearch.TaskType, "Search the Web", websearch.GetInputSchema, websearch.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeServiceNotConfigured, errors.ErrCodeWebSearchTimeout}},
	{screendriverslicense.TaskType, "Screen Driver's License", screendriverslicense.GetInputSchema, screendriverslicense.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeDocumentMissing, errors.ErrCodeUnsupportedMediaType, errors.ErrCodeProcessorNotConfigured, errors.ErrCodeFraudulentDocument}},
	{extractdriverslicense.TaskType, "Extract Driver's License", extractdriverslicense.GetInputSchema, extractdriverslicense.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeDocumentMissing, errors.ErrCodeUnsupportedMediaType, errors.ErrCodeFraudulentDocument, errors.ErrCodeExtractionEmpty, errors.ErrCodeDocumentExtractionFailed}},
	{extractbankstatement.TaskType, "Extract Bank Statement", extractbankstatement.GetInputSchema, extractbankstatement.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeDocumentMissing, errors.ErrCodeUnsupportedMediaType, errors.ErrCodeExtractionEmpty, errors.ErrCodeDocumentExtractionFailed}},
	{verifyidentity.TaskType, "Verify Identity", verifyidentity.GetInputSchema, verifyidentity.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeDocumentMissing, errors.ErrCodeFraudulentDocument, errors.ErrCodeDatabaseQueryFailed}},
	{updateopportunity.TaskType, "Update Opportunity", updateopportunity.GetInputSchema, updateopportunity.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeValidationFailed}},
	{getopportunity.TaskType, "Get Opportunity", getopportunity.GetInputSchema, getopportunity.GetOutputSchema,
		nil},
	{advancestage.TaskType, "Advance Onboarding Stage", advancestage.GetInputSchema, advancestage.GetOutputSchema,
		[]errors.ErrorCode{errors.ErrCodeValidationFailed, errors.ErrCodeInvalidStageTransition, errors.ErrCodeDatabaseQueryFailed}},
}

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	genPath := generateCmd.String("path", registry.DefaultPath, "Path to registry file")
	genConfig := generateCmd.String("config", "configs/config.yaml", "Worker config used for timeouts and retries")
	genVersion := generateCmd.String("version", "1.0.0", "Registry version")

	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	updatePath := updateCmd.String("path", registry.DefaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", registry.DefaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		reg, err := generate(*genConfig, *genVersion)
		if err == nil {
			err = registry.Validate(reg)
		}
		if err == nil {
			err = registry.Save(reg, *genPath)
		}
		if err != nil {
			fmt.Printf("Error generating registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), *genPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err == nil {
			err = registry.Validate(reg)
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "help":
		fallthrough
	default:
		help()
	}
}

// generate builds the registry from the worker packages. Only the workers
// section of the config file is read, so no collaborator settings are needed.
func generate(configPath, version string) (*registry.ActivityRegistry, error) {
	cfg := &config.Config{Agent: config.AgentConfig{
		CompanyName: config.DefaultCompanyName,
		DomainName:  config.DefaultDomainName,
	}}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}
	if err := v.UnmarshalKey("workers", &cfg.Workers); err != nil {
		return nil, fmt.Errorf("decode workers: %w", err)
	}

	descriptors, err := agents.Build(cfg.Agent)
	if err != nil {
		return nil, err
	}

	reg := &registry.ActivityRegistry{
		Version:     version,
		LastUpdated: time.Now().Format(time.RFC3339),
	}
	for _, e := range catalog {
		wc := config.GetWorkerConfig(cfg, e.taskType)
		activity := registry.Activity{
			ID:                   e.taskType,
			DisplayName:          e.displayName,
			Category:             strings.SplitN(e.taskType, ".", 2)[0],
			Version:              version,
			TaskType:             e.taskType,
			ImplementationStatus: "completed",
			InputSchema:          e.input(),
			OutputSchema:         e.output(),
			ErrorCodes:           []string{},
			Timeout:              config.GetDuration(wc.Timeout).String(),
			Retries:              wc.MaxRetries,
		}
		for _, code := range e.errorCodes {
			activity.ErrorCodes = append(activity.ErrorCodes, string(code))
		}
		for _, d := range descriptors {
			for _, t := range d.Tools {
				if t.TaskType != e.taskType {
					continue
				}
				activity.Agents = append(activity.Agents, d.Name)
				activity.Tools = appendUnique(activity.Tools, t.Name)
				if activity.Description == "" {
					activity.Description = t.Description
				}
			}
		}
		reg.Activities = append(reg.Activities, activity)
	}
	return reg, nil
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Activities {
		if reg.Activities[i].ID != id {
			continue
		}
		found = true
		switch field {
		case "status":
			reg.Activities[i].ImplementationStatus = value
		case "version":
			reg.Activities[i].Version = value
		case "displayName":
			reg.Activities[i].DisplayName = value
		case "description":
			reg.Activities[i].Description = value
		case "timeout":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			reg.Activities[i].Timeout = value
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			reg.Activities[i].Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.Save(reg, path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  generate  Rebuild the registry from the worker packages and agent tools
  update    Update an existing activity's field
  validate  Validate the registry file
  help      Show this help message

Examples:
  registry-updater generate -config configs/config.yaml
  registry-updater update -id kyc.identity.verify -field retries -value 5
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.

`)
}
