package bpmn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/pkg/testutil"
)

func TestCompile_ApprovalDocument(t *testing.T) {
	graph, err := Compile(testutil.ApprovalDocument, testutil.ApprovalProcessID)
	require.NoError(t, err)

	assert.Equal(t, testutil.ApprovalProcessID, graph.RootID)
	assert.Len(t, graph.Processes, 4)

	root := graph.Root()
	require.NotNil(t, root)
	assert.Equal(t, "StartEvent_1", root.StartID)

	_, node, ok := graph.Node(testutil.ApprovalProcessID, "WFG1_CallActivity")
	require.True(t, ok)
	assert.Equal(t, KindCallActivity, node.Kind)
	assert.Equal(t, "WFG1_Process", node.CalledElement)

	_, gateway, ok := graph.Node(testutil.ApprovalProcessID, "Gateway_WFG1")
	require.True(t, ok)
	assert.Equal(t, KindGateway, gateway.Kind)
	assert.Equal(t, "Flow_GW1_Default", gateway.DefaultFlow)

	_, task, ok := graph.Node("WFG2_Process", "WFG2_WFI1")
	require.True(t, ok)
	assert.Equal(t, KindUserTask, task.Kind)
}

func TestCompile_EmptyDocument(t *testing.T) {
	_, err := Compile("", "Main")
	require.Error(t, err)
	assert.True(t, IsInvalidDefinition(err))
}

func TestCompile_MalformedXML(t *testing.T) {
	_, err := Compile("<definitions><process", "Main")
	require.Error(t, err)
	assert.True(t, IsInvalidDefinition(err))
}

func TestCompile_NoProcesses(t *testing.T) {
	_, err := Compile(`<definitions></definitions>`, "Main")
	require.Error(t, err)

	var invalid *InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Problems[0], "no process elements")
}

func TestCompile_ProcessNotFound(t *testing.T) {
	document := `<definitions>
	  <process id="Other">
	    <startEvent id="Start"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)

	var invalid *InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), `process "Main" not found`)
	assert.Contains(t, invalid.Error(), "Other")
}

func TestCompile_CollectsAllProblems(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <userTask id="Task"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Task" targetRef="End"/>
	    <sequenceFlow id="F2" sourceRef="Missing" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)

	var invalid *InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "no start event")
	assert.Contains(t, invalid.Error(), `unknown source "Missing"`)
}

func TestCompile_DuplicateElementIDs(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <userTask id="Task"/>
	    <userTask id="Task"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="Task"/>
	    <sequenceFlow id="F2" sourceRef="Task" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate element id "Task"`)
}

func TestCompile_CallActivityMissingSubprocess(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <callActivity id="Call" calledElement="Ghost"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="Call"/>
	    <sequenceFlow id="F2" sourceRef="Call" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `references missing subprocess "Ghost"`)
}

func TestCompile_CallActivityCallsOwnProcess(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <callActivity id="Call" calledElement="Main"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="Call"/>
	    <sequenceFlow id="F2" sourceRef="Call" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calls its own process")
}

func TestCompile_TaskWithMultipleOutgoingFlows(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <userTask id="Task"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="Task"/>
	    <sequenceFlow id="F2" sourceRef="Task" targetRef="End"/>
	    <sequenceFlow id="F3" sourceRef="Task" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only gateways may branch")
}

func TestCompile_GatewayAmbiguousFallthrough(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <exclusiveGateway id="GW"/>
	    <userTask id="A"/>
	    <userTask id="B"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="GW"/>
	    <sequenceFlow id="F2" sourceRef="GW" targetRef="A"/>
	    <sequenceFlow id="F3" sourceRef="GW" targetRef="B"/>
	    <sequenceFlow id="F4" sourceRef="A" targetRef="End"/>
	    <sequenceFlow id="F5" sourceRef="B" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unconditional outgoing flows and no default")
}

func TestCompile_GatewayUnknownDefaultFlow(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <exclusiveGateway id="GW" default="Ghost"/>
	    <userTask id="A"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="GW"/>
	    <sequenceFlow id="F2" sourceRef="GW" targetRef="A"/>
	    <sequenceFlow id="F3" sourceRef="A" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `default flow "Ghost"`)
}

func TestCompile_DeadEndNode(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <userTask id="Task"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="Task"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no outgoing flow")
}

func TestCompile_BadConditionExpression(t *testing.T) {
	document := `<definitions>
	  <process id="Main">
	    <startEvent id="Start"/>
	    <exclusiveGateway id="GW"/>
	    <userTask id="A"/>
	    <userTask id="B"/>
	    <endEvent id="End"/>
	    <sequenceFlow id="F1" sourceRef="Start" targetRef="GW"/>
	    <sequenceFlow id="F2" sourceRef="GW" targetRef="A">
	      <conditionExpression>decision_action equals approve</conditionExpression>
	    </sequenceFlow>
	    <sequenceFlow id="F3" sourceRef="GW" targetRef="B"/>
	    <sequenceFlow id="F4" sourceRef="A" targetRef="End"/>
	    <sequenceFlow id="F5" sourceRef="B" targetRef="End"/>
	  </process>
	</definitions>`

	_, err := Compile(document, "Main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an equality comparison")
}
