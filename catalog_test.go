package zooexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knights-analytics/zooexport/graph"
)

func TestTasks(t *testing.T) {
	assert.Equal(t, []string{Classification, ObjectDetection, InstanceSegmentation, KeypointDetection, Segmentation}, Tasks())
}

func TestLookup(t *testing.T) {
	family, ok := Lookup(Classification, "efficientnet_v2_m")
	require.True(t, ok)
	assert.Equal(t, [2]int{480, 480}, family.InputShape)
	assert.Empty(t, family.Descriptors)

	_, ok = Lookup(Classification, "fasterrcnn_resnet50_fpn")
	assert.False(t, ok)
	_, ok = Lookup("depth_estimation", "midas")
	assert.False(t, ok)
}

func TestDetectionDescriptors(t *testing.T) {
	family, ok := Lookup(ObjectDetection, "ssdlite320_mobilenet_v3_large")
	require.True(t, ok)
	require.Len(t, family.Descriptors, 3)
	assert.Equal(t, "scores", family.Descriptors[1].Name)
	assert.Equal(t, graph.Label, family.Descriptors[2].Kind)

	family, ok = Lookup(KeypointDetection, "keypointrcnn_resnet50_fpn")
	require.True(t, ok)
	require.Len(t, family.Descriptors, 5)
	assert.Equal(t, "[1,None,17,3]", family.Descriptors[3].Shape.Batched().String())
	assert.Equal(t, "[1,None,17]", family.Descriptors[4].Shape.Batched().String())

	family, ok = Lookup(InstanceSegmentation, "maskrcnn_resnet50_fpn_v2")
	require.True(t, ok)
	assert.Equal(t, "[1,None,1,224,224]", family.Descriptors[3].Shape.Batched().String())
}

func TestEveryDescriptorNamesAnOutput(t *testing.T) {
	for _, task := range Tasks() {
		for _, family := range Families(task) {
			assert.Equal(t, family.IsDetection(), len(family.Descriptors) > 0, family.Name)
			for _, descriptor := range family.Descriptors {
				assert.Contains(t, family.OutputNames, descriptor.Name, family.Name)
			}
		}
	}
}
