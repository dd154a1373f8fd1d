package zooexport

import (
	"slices"

	"github.com/knights-analytics/zooexport/graph"
)

const (
	Classification       = "classification"
	ObjectDetection      = "object_detection"
	InstanceSegmentation = "instance_segmentation"
	KeypointDetection    = "keypoint_detection"
	Segmentation         = "segmentation"
)

// Family declares how one model variant is exported.
type Family struct {
	Task string
	// Name is both the CLI variant name and the artifact directory name.
	Name string
	// InputShape is the [height, width] the sample image is resized to.
	InputShape  [2]int
	InputName   string
	OutputNames []string
	// Descriptors lists the outputs republished with a leading batch axis.
	// Families without descriptors keep the exported graph as is.
	Descriptors []graph.OutputDescriptor
}

func classificationFamily(name string, size int) Family {
	return Family{
		Task:        Classification,
		Name:        name,
		InputShape:  [2]int{size, size},
		InputName:   "input",
		OutputNames: []string{"output"},
	}
}

func objectDetectionFamily(name string, outputNames ...string) Family {
	return Family{
		Task:        ObjectDetection,
		Name:        name,
		InputShape:  [2]int{224, 224},
		InputName:   "input",
		OutputNames: outputNames,
		Descriptors: graph.DetectionOutputs(outputNames...),
	}
}

var catalog = []Family{
	classificationFamily("mobilenet_v3_small", 224),
	classificationFamily("efficientnet_v2_s", 384),
	classificationFamily("efficientnet_v2_m", 480),
	classificationFamily("efficientnet_v2_l", 480),
	classificationFamily("squeezenet1_1", 224),

	objectDetectionFamily("fasterrcnn_resnet50_fpn", "boxes", "labels", "scores"),
	objectDetectionFamily("fasterrcnn_mobilenet_v3_large_fpn", "boxes", "labels", "scores"),
	objectDetectionFamily("ssdlite320_mobilenet_v3_large", "boxes", "scores", "labels"),

	{
		Task:        InstanceSegmentation,
		Name:        "maskrcnn_resnet50_fpn_v2",
		InputShape:  [2]int{224, 224},
		InputName:   "input",
		OutputNames: []string{"boxes", "labels", "scores", "masks"},
		Descriptors: append(graph.DetectionOutputs("boxes", "labels", "scores"),
			graph.OutputDescriptor{Name: "masks", Kind: graph.Float, Shape: graph.NewShape(graph.Detections, 1, 224, 224)}),
	},
	{
		Task:        KeypointDetection,
		Name:        "keypointrcnn_resnet50_fpn",
		InputShape:  [2]int{224, 224},
		InputName:   "input",
		OutputNames: []string{"boxes", "labels", "scores", "keypoints", "keypoints_scores"},
		Descriptors: append(graph.DetectionOutputs("boxes", "labels", "scores"),
			graph.OutputDescriptor{Name: "keypoints", Kind: graph.Float, Shape: graph.NewShape(graph.Detections, 17, 3)},
			graph.OutputDescriptor{Name: "keypoints_scores", Kind: graph.Float, Shape: graph.NewShape(graph.Detections, 17)}),
	},
	{
		Task:        Segmentation,
		Name:        "deeplabv3_mobilenet_v3_large",
		InputShape:  [2]int{224, 224},
		InputName:   "input",
		OutputNames: []string{"output", "aux"},
	},
}

// Tasks returns the supported tasks in catalog order.
func Tasks() []string {
	var tasks []string
	for _, family := range catalog {
		if !slices.Contains(tasks, family.Task) {
			tasks = append(tasks, family.Task)
		}
	}
	return tasks
}

// Families returns the families of a task in catalog order.
func Families(task string) []Family {
	var families []Family
	for _, family := range catalog {
		if family.Task == task {
			families = append(families, family)
		}
	}
	return families
}

// Lookup finds the family exporting variant for task.
func Lookup(task, variant string) (Family, bool) {
	for _, family := range catalog {
		if family.Task == task && family.Name == variant {
			return family, true
		}
	}
	return Family{}, false
}

// IsDetection reports whether the family emits per-detection outputs.
func (f Family) IsDetection() bool {
	return f.Task == ObjectDetection || f.Task == InstanceSegmentation || f.Task == KeypointDetection
}
