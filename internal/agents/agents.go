// Package agents describes the conversational agents that drive onboarding
// and the worker-backed tools each one may call.
package agents

import (
	"fmt"
	"strings"
	"text/template"

	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/validation"
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

	"github.com/invopop/jsonschema"
)

const (
	Root               = "root"
	Qualify            = "qualify"
	ProductRecommender = "product_recommender"
	KYC                = "kyc"
)

// Tool is a function an agent may call. Each one is served by a worker.
type Tool struct {
	Name        string             `json:"name"`
	TaskType    string             `json:"taskType"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

type Descriptor struct {
	Name        string   `json:"name"`
	Model       string   `json:"model"`
	Description string   `json:"description"`
	Instruction string   `json:"instruction"`
	Tools       []Tool   `json:"tools"`
	SubAgents   []string `json:"subAgents,omitempty"`
}

type promptData struct {
	CompanyName string
	DomainName  string
	Products    []string
	Features    []Feature
}

func tool(name, taskType, description string, input interface{}) Tool {
	return Tool{
		Name:        name,
		TaskType:    taskType,
		Description: description,
		Parameters:  validation.SchemaFor(input),
	}
}

var advanceStageTool = tool("advance_stage", advancestage.TaskType,
	"Moves the onboarding conversation to its next stage.", &advancestage.Input{})

// Build renders every agent for the configured company. The root agent comes
// first.
func Build(cfg config.AgentConfig) ([]Descriptor, error) {
	if strings.TrimSpace(cfg.CompanyName) == "" {
		return nil, fmt.Errorf("agent company name is required")
	}
	if strings.TrimSpace(cfg.DomainName) == "" {
		return nil, fmt.Errorf("agent domain name is required")
	}

	data := promptData{
		CompanyName: cfg.CompanyName,
		DomainName:  cfg.DomainName,
		Products:    Products,
		Features:    Features,
	}

	specs := []struct {
		d           Descriptor
		instruction string
	}{
		{Descriptor{
			Name:        Root,
			Model:       cfg.RootModel,
			Description: fmt.Sprintf("Guides small business owners through buying a %s Point of Sale system.", cfg.CompanyName),
			Tools:       []Tool{advanceStageTool},
			SubAgents:   []string{Qualify, ProductRecommender, KYC},
		}, rootInstruction},
		{Descriptor{
			Name:        Qualify,
			Model:       cfg.SubAgentModel,
			Description: "Confirms the business against public place listings.",
			Tools: []Tool{
				tool("find_business_from_google_maps", findbusiness.TaskType,
					"Looks up candidate places for a business name and location.", &findbusiness.Input{}),
				advanceStageTool,
			},
		}, qualifyInstruction},
		{Descriptor{
			Name:        ProductRecommender,
			Model:       cfg.SubAgentModel,
			Description: fmt.Sprintf("Recommends the %s POS terminal that fits the business.", cfg.CompanyName),
			Tools: []Tool{
				tool("identify_pos_model", identifydevice.TaskType,
					"Identifies the make and model of the terminal in an uploaded photo.", &identifydevice.Input{}),
				tool("image_editor", visualizedevice.TaskType,
					"Shows the selected terminal in place of the current one in the store photo.", &visualizedevice.Input{}),
				tool("knowledgebase_search", knowledgesearch.TaskType,
					"Answers technical questions about POS products from the knowledge base.", &knowledgesearch.Input{}),
				tool("search_web", websearch.TaskType,
					"Answers general questions about the company from the web.", &websearch.Input{}),
				tool("update_opportunity_stage", updateopportunity.TaskType,
					"Comments on the opportunity and moves its stage.", &updateopportunity.Input{}),
				tool("get_opportunity_details", getopportunity.TaskType,
					"Reads the opportunity recorded for the business.", &getopportunity.Input{}),
				advanceStageTool,
			},
		}, productRecommenderInstruction},
		{Descriptor{
			Name:        KYC,
			Model:       cfg.SubAgentModel,
			Description: "Verifies the owner's identity from a driver's license and a bank statement.",
			Tools: []Tool{
				tool("check_fraud_drivers_license", screendriverslicense.TaskType,
					"Screens an uploaded driver's license for fraud signals.", &screendriverslicense.Input{}),
				tool("extract_info_from_drivers_license", extractdriverslicense.TaskType,
					"Extracts the holder's name and address from a driver's license.", &extractdriverslicense.Input{}),
				tool("extract_info_from_bank_statement", extractbankstatement.TaskType,
					"Extracts the account holder's name and address from a bank statement.", &extractbankstatement.Input{}),
				tool("verify_identity", verifyidentity.TaskType,
					"Compares both documents and records the verification outcome.", &verifyidentity.Input{}),
				tool("update_opportunity_with_comment", updateopportunity.TaskType,
					"Adds a comment to the opportunity.", &updateopportunity.Input{}),
				advanceStageTool,
			},
		}, kycInstruction},
	}

	out := make([]Descriptor, 0, len(specs))
	for _, s := range specs {
		text, err := render(s.d.Name, s.instruction, data)
		if err != nil {
			return nil, err
		}
		s.d.Instruction = text
		out = append(out, s.d)
	}
	return out, nil
}

func render(name, text string, data promptData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s instruction: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s instruction: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// TaskTypes lists every worker task type reachable from the agents.
func TaskTypes(descriptors []Descriptor) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range descriptors {
		for _, t := range d.Tools {
			if !seen[t.TaskType] {
				seen[t.TaskType] = true
				out = append(out, t.TaskType)
			}
		}
	}
	return out
}
