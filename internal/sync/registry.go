package sync

import "fmt"

// EdgeRule declares one typed relationship derivable from a record's
// fields. FromField/ToField name the record fields holding the endpoint
// identifiers; an empty field means the entity's own node is that
// endpoint. PropFields are copied from the record onto the edge.
//
// Rules whose endpoint fields are absent from a record are skipped, not
// failed: a relationship-dependent entity keeps its node even when the
// identifiers could not be derived.
type EdgeRule struct {
	Rel       string
	FromLabel string
	FromKey   string
	FromField string
	ToLabel   string
	ToKey     string
	ToField   string

	PropFields []string
}

// EntitySpec describes how one entity type projects into the graph.
type EntitySpec struct {
	// Type is the registry key, e.g. "candidate".
	Type string

	// Label is the node label, e.g. "Candidate".
	Label string

	// KeyField is the record field holding the stable identifier.
	KeyField string

	// Table is the relational table backing the type.
	Table string

	// EdgeOnly marks join entities that project into relationships
	// between existing nodes instead of into nodes of their own.
	EdgeOnly bool

	// JoinField, when set, names the field holding the registration
	// join identifier; the foreign ids for the edge rules are then
	// resolved through that join entity before edges are derived.
	JoinField string

	// Edges are the relationships derivable from records of this type.
	Edges []EdgeRule
}

// Registry holds the entity specs and their bulk execution order.
// Cross-type order matters: entities whose edges point at other node
// types synchronize after their targets, so edge merges find both
// endpoints present.
type Registry struct {
	specs map[string]EntitySpec
	order []string
}

// NewRegistry creates a registry from specs in the given order.
func NewRegistry(specs []EntitySpec) (*Registry, error) {
	r := &Registry{
		specs: make(map[string]EntitySpec, len(specs)),
		order: make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		if spec.Type == "" || spec.KeyField == "" {
			return nil, fmt.Errorf("entity spec missing type or key field: %+v", spec)
		}
		if !spec.EdgeOnly && spec.Label == "" {
			return nil, fmt.Errorf("entity spec %s missing label", spec.Type)
		}
		if _, exists := r.specs[spec.Type]; exists {
			return nil, fmt.Errorf("duplicate entity spec %s", spec.Type)
		}
		r.specs[spec.Type] = spec
		r.order = append(r.order, spec.Type)
	}
	return r, nil
}

// Spec returns the spec for an entity type.
func (r *Registry) Spec(entityType string) (EntitySpec, bool) {
	spec, ok := r.specs[entityType]
	return spec, ok
}

// Order returns the bulk execution order.
func (r *Registry) Order() []string {
	order := make([]string, len(r.order))
	copy(order, r.order)
	return order
}

// Node labels.
const (
	LabelManagementUnit = "ManagementUnit"
	LabelExamLocation   = "ExamLocation"
	LabelSchool         = "School"
	LabelMajor          = "Major"
	LabelSubject        = "Subject"
	LabelDegree         = "Degree"
	LabelCredential     = "Credential"
	LabelExam           = "Exam"
	LabelExamRoom       = "ExamRoom"
	LabelExamSchedule   = "ExamSchedule"
	LabelCandidate      = "Candidate"
	LabelExamAttempt    = "ExamAttempt"
	LabelScore          = "Score"
	LabelScoreReview    = "ScoreReview"
	LabelScoreHistory   = "ScoreHistory"
	LabelCertificate    = "Certificate"
	LabelAward          = "Award"
	LabelAchievement    = "Achievement"
	LabelRecognition    = "Recognition"
)

// Relationship types.
const (
	RelLocatedIn           = "LOCATED_IN"
	RelRelatedTo           = "RELATED_TO"
	RelForExam             = "FOR_EXAM"
	RelForSubject          = "FOR_SUBJECT"
	RelInExam              = "IN_EXAM"
	RelProvidesCredential  = "PROVIDES_CREDENTIAL"
	RelHasAttempt          = "HAS_ATTEMPT"
	RelFollowsSchedule     = "ATTEMPT_FOLLOWS_SCHEDULE"
	RelReceivesScore       = "RECEIVES_SCORE"
	RelHasReview           = "HAS_REVIEW"
	RelHasHistory          = "HAS_HISTORY"
	RelEarnsCertificate    = "EARNS_CERTIFICATE"
	RelCertificateForExam  = "CERTIFICATE_FOR_EXAM"
	RelEarnsAward          = "EARNS_AWARD"
	RelReceivesRecognition = "RECEIVES_RECOGNITION"
	RelAchieves            = "ACHIEVES"
	RelAttendsExam         = "ATTENDS_EXAM"
	RelStudiesAt           = "STUDIES_AT"
	RelOffersMajor         = "OFFERS_MAJOR"
	RelIncludesSubject     = "INCLUDES_SUBJECT"
	RelInstanceOf          = "INSTANCE_OF"
	RelIsA                 = "IS_A"
)

// DefaultRegistry returns the full entity registry in dependency order:
// free-standing reference entities first, then the exam family, then
// candidate-linked entities, then the join entities that only project
// into relationships.
func DefaultRegistry() *Registry {
	candidateEdge := func(rel string) EdgeRule {
		return EdgeRule{
			Rel:       rel,
			FromLabel: LabelCandidate,
			FromKey:   "candidate_id",
			FromField: "candidate_id",
		}
	}

	specs := []EntitySpec{
		{
			Type: "management_unit", Label: LabelManagementUnit,
			KeyField: "unit_id", Table: "management_unit",
		},
		{
			Type: "exam_location", Label: LabelExamLocation,
			KeyField: "location_id", Table: "exam_location",
		},
		{
			Type: "school", Label: LabelSchool,
			KeyField: "school_id", Table: "school",
		},
		{
			Type: "major", Label: LabelMajor,
			KeyField: "major_id", Table: "major",
		},
		{
			Type: "subject", Label: LabelSubject,
			KeyField: "subject_id", Table: "subject",
		},
		{
			Type: "degree", Label: LabelDegree,
			KeyField: "degree_id", Table: "degree",
			Edges: []EdgeRule{
				{
					Rel:     RelRelatedTo,
					ToLabel: LabelMajor, ToKey: "major_id", ToField: "major_id",
				},
			},
		},
		{
			Type: "credential", Label: LabelCredential,
			KeyField: "credential_id", Table: "candidate_credential",
			Edges: []EdgeRule{
				candidateEdge(RelProvidesCredential),
			},
		},
		{
			Type: "exam", Label: LabelExam,
			KeyField: "exam_id", Table: "exam",
		},
		{
			Type: "exam_room", Label: LabelExamRoom,
			KeyField: "room_id", Table: "exam_room",
			Edges: []EdgeRule{
				{
					Rel:     RelLocatedIn,
					ToLabel: LabelExamLocation, ToKey: "location_id", ToField: "location_id",
				},
			},
		},
		{
			Type: "exam_schedule", Label: LabelExamSchedule,
			KeyField: "schedule_id", Table: "exam_schedule",
			Edges: []EdgeRule{
				{
					Rel:     RelForExam,
					ToLabel: LabelExam, ToKey: "exam_id", ToField: "exam_id",
				},
				{
					Rel:     RelForSubject,
					ToLabel: LabelSubject, ToKey: "subject_id", ToField: "subject_id",
				},
			},
		},
		{
			Type: "candidate", Label: LabelCandidate,
			KeyField: "candidate_id", Table: "candidate",
		},
		{
			Type: "exam_attempt", Label: LabelExamAttempt,
			KeyField: "attempt_id", Table: "exam_attempt_history",
			Edges: []EdgeRule{
				candidateEdge(RelHasAttempt),
				{
					Rel:     RelFollowsSchedule,
					ToLabel: LabelExamSchedule, ToKey: "schedule_id", ToField: "schedule_id",
				},
			},
		},
		{
			Type: "score", Label: LabelScore,
			KeyField: "score_id", Table: "exam_score",
			Edges: []EdgeRule{
				candidateEdge(RelReceivesScore),
				{
					Rel:     RelForSubject,
					ToLabel: LabelSubject, ToKey: "subject_id", ToField: "subject_id",
				},
				{
					Rel:     RelInExam,
					ToLabel: LabelExam, ToKey: "exam_id", ToField: "exam_id",
				},
			},
		},
		{
			Type: "score_review", Label: LabelScoreReview,
			KeyField: "review_id", Table: "score_review",
			Edges: []EdgeRule{
				{
					Rel:       RelHasReview,
					FromLabel: LabelScore, FromKey: "score_id", FromField: "score_id",
				},
			},
		},
		{
			Type: "score_history", Label: LabelScoreHistory,
			KeyField: "history_id", Table: "exam_score_history",
			Edges: []EdgeRule{
				{
					Rel:       RelHasHistory,
					FromLabel: LabelScore, FromKey: "score_id", FromField: "score_id",
				},
			},
		},
		{
			Type: "certificate", Label: LabelCertificate,
			KeyField: "certificate_id", Table: "certificate",
			JoinField: "candidate_exam_id",
			Edges: []EdgeRule{
				candidateEdge(RelEarnsCertificate),
				{
					Rel:     RelCertificateForExam,
					ToLabel: LabelExam, ToKey: "exam_id", ToField: "exam_id",
				},
			},
		},
		{
			Type: "award", Label: LabelAward,
			KeyField: "award_id", Table: "award",
			JoinField: "candidate_exam_id",
			Edges: []EdgeRule{
				candidateEdge(RelEarnsAward),
				{
					Rel:     RelForExam,
					ToLabel: LabelExam, ToKey: "exam_id", ToField: "exam_id",
				},
			},
		},
		{
			Type: "achievement", Label: LabelAchievement,
			KeyField: "achievement_id", Table: "achievement",
			Edges: []EdgeRule{
				candidateEdge(RelAchieves),
			},
		},
		{
			Type: "recognition", Label: LabelRecognition,
			KeyField: "recognition_id", Table: "recognition",
			JoinField: "candidate_exam_id",
			Edges: []EdgeRule{
				candidateEdge(RelReceivesRecognition),
				{
					Rel:     RelForExam,
					ToLabel: LabelExam, ToKey: "exam_id", ToField: "exam_id",
				},
			},
		},
		{
			Type: "candidate_exam", EdgeOnly: true,
			KeyField: "candidate_exam_id", Table: "candidate_exam",
			Edges: []EdgeRule{
				{
					Rel:       RelAttendsExam,
					FromLabel: LabelCandidate, FromKey: "candidate_id", FromField: "candidate_id",
					ToLabel: LabelExam, ToKey: "exam_id", ToField: "exam_id",
					PropFields: []string{"registration_number", "registration_date", "status"},
				},
			},
		},
		{
			Type: "education_history", EdgeOnly: true,
			KeyField: "education_history_id", Table: "education_history",
			Edges: []EdgeRule{
				{
					Rel:       RelStudiesAt,
					FromLabel: LabelCandidate, FromKey: "candidate_id", FromField: "candidate_id",
					ToLabel: LabelSchool, ToKey: "school_id", ToField: "school_id",
					PropFields: []string{"start_year", "end_year", "education_level_id"},
				},
			},
		},
		{
			Type: "school_major", EdgeOnly: true,
			KeyField: "school_major_id", Table: "school_major",
			Edges: []EdgeRule{
				{
					Rel:       RelOffersMajor,
					FromLabel: LabelSchool, FromKey: "school_id", FromField: "school_id",
					ToLabel: LabelMajor, ToKey: "major_id", ToField: "major_id",
					PropFields: []string{"start_year"},
				},
			},
		},
		{
			Type: "exam_subject", EdgeOnly: true,
			KeyField: "exam_subject_id", Table: "exam_subject",
			Edges: []EdgeRule{
				{
					Rel:       RelIncludesSubject,
					FromLabel: LabelExam, FromKey: "exam_id", FromField: "exam_id",
					ToLabel: LabelSubject, ToKey: "subject_id", ToField: "subject_id",
					PropFields: []string{"exam_date", "duration_minutes"},
				},
			},
		},
	}

	registry, err := NewRegistry(specs)
	if err != nil {
		// The default specs are static; a failure here is a programming error.
		panic(err)
	}
	return registry
}
