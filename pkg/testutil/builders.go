// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagegate/stagegate/pkg/models"
)

// ApprovalProcessID is the root process id of ApprovalDocument.
const ApprovalProcessID = "DesignApproval"

// ApprovalDocument is a three-group approval process used across test suites.
// Each group is a call activity expanding to a subprocess of checkpoints; the
// gateways route on the resolution data of the last completed checkpoint.
const ApprovalDocument = `<?xml version="1.0" encoding="UTF-8"?>
<definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL">
  <process id="DesignApproval" name="Design Approval">
    <startEvent id="StartEvent_1" name="Start"/>
    <callActivity id="WFG1_CallActivity" name="Project Kickoff" calledElement="WFG1_Process"/>
    <exclusiveGateway id="Gateway_WFG1" default="Flow_GW1_Default"/>
    <callActivity id="WFG2_CallActivity" name="Schematic Design" calledElement="WFG2_Process"/>
    <exclusiveGateway id="Gateway_WFG2"/>
    <callActivity id="WFG3_CallActivity" name="Construction Docs" calledElement="WFG3_Process"/>
    <exclusiveGateway id="Gateway_WFG3"/>
    <endEvent id="EndEvent_1" name="End"/>
    <sequenceFlow id="Flow_Start" sourceRef="StartEvent_1" targetRef="WFG1_CallActivity"/>
    <sequenceFlow id="Flow_WFG1_GW" sourceRef="WFG1_CallActivity" targetRef="Gateway_WFG1"/>
    <sequenceFlow id="Flow_GW1_Skip" sourceRef="Gateway_WFG1" targetRef="WFG3_CallActivity">
      <conditionExpression>decision_action == 'skip_to' and target_group == 'WFG3'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="Flow_GW1_Default" sourceRef="Gateway_WFG1" targetRef="WFG2_CallActivity"/>
    <sequenceFlow id="Flow_WFG2_GW" sourceRef="WFG2_CallActivity" targetRef="Gateway_WFG2"/>
    <sequenceFlow id="Flow_GW2_Back" sourceRef="Gateway_WFG2" targetRef="WFG1_CallActivity">
      <conditionExpression>decision_action == 'send_back' and target_group == 'WFG1'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="Flow_GW2_Next" sourceRef="Gateway_WFG2" targetRef="WFG3_CallActivity"/>
    <sequenceFlow id="Flow_WFG3_GW" sourceRef="WFG3_CallActivity" targetRef="Gateway_WFG3"/>
    <sequenceFlow id="Flow_GW3_Back" sourceRef="Gateway_WFG3" targetRef="WFG2_CallActivity">
      <conditionExpression>decision_action == 'send_back' and target_group == 'WFG2'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="Flow_GW3_End" sourceRef="Gateway_WFG3" targetRef="EndEvent_1"/>
  </process>
  <process id="WFG1_Process" name="Project Kickoff">
    <startEvent id="WFG1_Start"/>
    <userTask id="WFG1_WFI1" name="Initial Project Review"/>
    <userTask id="WFG1_WFI2" name="Kickoff Meeting"/>
    <exclusiveGateway id="WFG1_Gateway"/>
    <endEvent id="WFG1_End"/>
    <sequenceFlow id="WFG1_Flow_Start" sourceRef="WFG1_Start" targetRef="WFG1_WFI1"/>
    <sequenceFlow id="WFG1_Flow_GW" sourceRef="WFG1_WFI1" targetRef="WFG1_Gateway"/>
    <sequenceFlow id="WFG1_Flow_Complete" sourceRef="WFG1_Gateway" targetRef="WFG1_End">
      <conditionExpression>decision_action == 'complete_wfg'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="WFG1_Flow_Skip" sourceRef="WFG1_Gateway" targetRef="WFG1_End">
      <conditionExpression>decision_action == 'skip_to'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="WFG1_Flow_Next" sourceRef="WFG1_Gateway" targetRef="WFG1_WFI2"/>
    <sequenceFlow id="WFG1_Flow_End" sourceRef="WFG1_WFI2" targetRef="WFG1_End"/>
  </process>
  <process id="WFG2_Process" name="Schematic Design">
    <startEvent id="WFG2_Start"/>
    <userTask id="WFG2_WFI1" name="Design Development"/>
    <userTask id="WFG2_WFI2" name="Design Review"/>
    <exclusiveGateway id="WFG2_GatewayA"/>
    <exclusiveGateway id="WFG2_GatewayB"/>
    <endEvent id="WFG2_End"/>
    <sequenceFlow id="WFG2_Flow_Start" sourceRef="WFG2_Start" targetRef="WFG2_WFI1"/>
    <sequenceFlow id="WFG2_Flow_GWA" sourceRef="WFG2_WFI1" targetRef="WFG2_GatewayA"/>
    <sequenceFlow id="WFG2_FlowA_Back" sourceRef="WFG2_GatewayA" targetRef="WFG2_End">
      <conditionExpression>decision_action == 'send_back' and target_group == 'WFG1'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="WFG2_FlowA_Complete" sourceRef="WFG2_GatewayA" targetRef="WFG2_End">
      <conditionExpression>decision_action == 'complete_wfg'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="WFG2_FlowA_Next" sourceRef="WFG2_GatewayA" targetRef="WFG2_WFI2"/>
    <sequenceFlow id="WFG2_Flow_GWB" sourceRef="WFG2_WFI2" targetRef="WFG2_GatewayB"/>
    <sequenceFlow id="WFG2_FlowB_Item" sourceRef="WFG2_GatewayB" targetRef="WFG2_WFI1">
      <conditionExpression>decision_action == 'send_back' and target_item == 'WFI1'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="WFG2_FlowB_Back" sourceRef="WFG2_GatewayB" targetRef="WFG2_End">
      <conditionExpression>decision_action == 'send_back' and target_group == 'WFG1'</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="WFG2_FlowB_End" sourceRef="WFG2_GatewayB" targetRef="WFG2_End"/>
  </process>
  <process id="WFG3_Process" name="Construction Docs">
    <startEvent id="WFG3_Start"/>
    <userTask id="WFG3_WFI1" name="Final Documentation"/>
    <endEvent id="WFG3_End"/>
    <sequenceFlow id="WFG3_Flow_Start" sourceRef="WFG3_Start" targetRef="WFG3_WFI1"/>
    <sequenceFlow id="WFG3_Flow_End" sourceRef="WFG3_WFI1" targetRef="WFG3_End"/>
  </process>
</definitions>`

// CreateTestDefinition creates a ProcessDefinition with default values that
// can be overridden.
func CreateTestDefinition(overrides ...func(*models.ProcessDefinition)) *models.ProcessDefinition {
	now := time.Now().UTC()
	def := &models.ProcessDefinition{
		ID:        uuid.New().String(),
		Name:      "Design Approval",
		ProcessID: ApprovalProcessID,
		Status:    models.DefinitionStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(def)
	}

	return def
}

// WithStatus sets the definition status.
func WithStatus(status models.DefinitionStatus) func(*models.ProcessDefinition) {
	return func(d *models.ProcessDefinition) {
		d.Status = status
	}
}

// WithName sets the definition name.
func WithName(name string) func(*models.ProcessDefinition) {
	return func(d *models.ProcessDefinition) {
		d.Name = name
	}
}

// CreateTestVersion creates a DefinitionVersion for a definition, carrying
// ApprovalDocument by default.
func CreateTestVersion(definitionID string, version int, overrides ...func(*models.DefinitionVersion)) *models.DefinitionVersion {
	v := &models.DefinitionVersion{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		Version:      version,
		Document:     ApprovalDocument,
		CreatedAt:    time.Now().UTC(),
	}

	for _, override := range overrides {
		override(v)
	}

	return v
}

// WithActive marks the version active.
func WithActive() func(*models.DefinitionVersion) {
	return func(v *models.DefinitionVersion) {
		v.IsActive = true
	}
}

// CreateTestProject creates a Project with default values that can be
// overridden.
func CreateTestProject(overrides ...func(*models.Project)) *models.Project {
	now := time.Now().UTC()
	project := &models.Project{
		ID:           uuid.New().String(),
		Name:         "Test Project",
		CurrentGroup: "WFG1",
		CurrentItem:  "WFI1",
		Status:       models.ProjectStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, override := range overrides {
		override(project)
	}

	return project
}
