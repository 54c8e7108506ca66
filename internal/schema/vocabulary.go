package schema

import "github.com/spachava753/jumpstart/internal/models"

// WorkloadTags is the closed set of workload_tags values.
var WorkloadTags = []string{
	"Data Engineering",
	"Data Warehouse",
	"Data Science",
	"Real Time Intelligence",
	"Data Factory",
	"SQL Database",
	"Power BI",
	"Test",
}

// ScenarioTags is the closed set of scenario_tags values.
var ScenarioTags = []string{
	"Streaming",
	"Modeling",
	"Monitoring",
	"Data Integration",
	"Batch Processing",
	"Test",
}

// JumpstartTypes is the closed set of type values.
var JumpstartTypes = []models.JumpstartType{
	models.TypeAccelerator,
	models.TypeTutorial,
	models.TypeDemo,
}

// MaxDescriptionLength bounds the description field.
const MaxDescriptionLength = 250
