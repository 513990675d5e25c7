package models

// Options offered by the paper mentorship form.
var (
	States = []string{"Kano", "Jigawa", "Bauchi"}

	FacilityTypes = []string{"Primary", "Secondary", "Tertiary"}

	InteractionTypes = []string{"On-site", "Virtual", "Phone"}

	ActivityTypes = []string{
		"Direct clinical service",
		"Side-by-side mentorship",
		"Case review/discussion",
		"Data review and analysis",
		"Systems assessment/improvement",
		"Training/demonstration",
		"Meeting facilitation",
		"Other",
	}

	ThematicAreas = []string{
		"General HIV care and treatment",
		"Care and Support",
		"Pediatric HIV management",
		"PMTCT",
		"TB/HIV",
		"Laboratory services",
		"Supply chain",
		"Strategic Information",
		"Quality improvement",
		"Other",
	}

	CompetencyLevels = []string{"Beginner", "Intermediate", "Advanced", "Proficient", "Expert"}

	TransferMethods = []string{
		"Demonstration",
		"Hands-on practice",
		"Observation",
		"Discussion",
		"Presentation",
		"Simulation",
		"Other",
	}

	Priorities = []string{"High", "Medium", "Low"}

	AttachmentTypes = []string{
		"Photos (with consent)",
		"Tools/Templates Shared",
		"Before/After Documentation",
		"Reference Materials",
	}

	Cadres = []string{
		"Doctor",
		"Nurse",
		"Midwife",
		"Pharmacist",
		"Pharmacy Technician",
		"Laboratory Scientist",
		"Laboratory Technician",
		"Community Health Extension Worker (CHEW)",
		"Community Health Officer (CHO)",
		"Data Clerk",
		"M&E Officer",
		"Other",
	}
)

// ConstantLists maps the route name of each list to its values.
func ConstantLists() map[string][]string {
	return map[string][]string{
		"states":            States,
		"facility_types":    FacilityTypes,
		"interaction_types": InteractionTypes,
		"activity_types":    ActivityTypes,
		"thematic_areas":    ThematicAreas,
		"competency_levels": CompetencyLevels,
		"transfer_methods":  TransferMethods,
		"priorities":        Priorities,
		"attachment_types":  AttachmentTypes,
		"cadres":            Cadres,
	}
}
