package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/Lllllllleong/ticketflow/internal/models"
)

// WorkflowNotifier starts a Cloud Workflows execution for every finished upload.
type WorkflowNotifier struct {
	executionsClient *executions.Client
	parent           string
}

// NewWorkflowNotifier creates a Workflows Executions client for one workflow.
func NewWorkflowNotifier(ctx context.Context, projectID, location, workflowID string) (*WorkflowNotifier, error) {
	executionsClient, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}
	return &WorkflowNotifier{
		executionsClient: executionsClient,
		parent:           workflowParent(projectID, location, workflowID),
	}, nil
}

// NotifyUpload passes the recorded pages to the workflow as its argument.
func (n *WorkflowNotifier) NotifyUpload(ctx context.Context, handoff models.UploadHandoff) error {
	req, err := executionRequest(n.parent, handoff)
	if err != nil {
		return err
	}
	if _, err := n.executionsClient.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return nil
}

func (n *WorkflowNotifier) Close() error {
	return n.executionsClient.Close()
}

func workflowParent(projectID, location, workflowID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID)
}

func executionRequest(parent string, handoff models.UploadHandoff) (*executionspb.CreateExecutionRequest, error) {
	payloadBytes, err := json.Marshal(handoff)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	return &executionspb.CreateExecutionRequest{
		Parent: parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}, nil
}
