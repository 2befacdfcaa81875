package intake

import (
	"fmt"
	"math/rand"
	"time"
)

// Generator produces synthetic but rule-clean records for demo environments
// and seeding. The same seed always yields the same sequence of records.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator for the given seed. A zero seed draws one
// from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Identity carries the client fields the caller already knows. Zero-valued
// fields are filled with generated data.
type Identity struct {
	ClientID  string
	NumericID int
	FirstName string
	LastName  string
	BirthDate Date
	Author    string
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) yesNo() YesNo {
	if g.rng.Intn(2) == 0 {
		return Yes
	}
	return No
}

func (g *Generator) posBenefit() POSBenefit {
	switch g.rng.Intn(3) {
	case 0:
		return POSCopay
	case 1:
		return POSCoinsurance
	default:
		return POSNotCovered
	}
}

func (g *Generator) amount(options []float64) float64 {
	return options[g.rng.Intn(len(options))]
}

// dateBetween returns a random calendar date in [startYear, endYear].
func (g *Generator) dateBetween(startYear, endYear int) Date {
	year := startYear + g.rng.Intn(endYear-startYear+1)
	month := time.Month(1 + g.rng.Intn(12))
	day := 1 + g.rng.Intn(28)
	return NewDate(year, month, day)
}

func (g *Generator) fillIdentity(id *Identity) {
	if id.FirstName == "" {
		id.FirstName = g.pick(firstNames)
	}
	if id.LastName == "" {
		id.LastName = g.pick(lastNames)
	}
	if !id.BirthDate.Set() {
		id.BirthDate = g.dateBetween(1995, 2019)
	}
	if id.Author == "" {
		id.Author = g.pick(authors)
	}
	if id.ClientID == "" {
		id.ClientID = fmt.Sprintf("IC-%05d", 10000+g.rng.Intn(90000))
	}
	if id.NumericID == 0 {
		id.NumericID = 10000 + g.rng.Intn(90000)
	}
}

// BenefitCheck generates a benefit verification record that passes Validate.
func (g *Generator) BenefitCheck(id Identity) *BenefitCheckRecord {
	g.fillIdentity(&id)

	year := g.now().Year()
	indDeductible := g.amount([]float64{500, 1000, 1500, 2000, 2500, 3000})
	famDeductible := indDeductible * 2
	indOPM := g.amount([]float64{3000, 4000, 5000, 6000, 7500})
	famOPM := indOPM * 2

	rec := &BenefitCheckRecord{
		ClientInformation: ClientInformation{
			IntakeClientID: id.ClientID,
			ChildFirstName: id.FirstName,
			ChildLastName:  id.LastName,
			BirthDate:      id.BirthDate,
		},
		InsuranceInformation: InsuranceInformation{
			PlanName:            g.pick(planNames),
			CoverageStartDate:   NewDate(year, time.January, 1),
			CoverageEndDate:     NewDate(year, time.December, 31),
			PlanAddress:         g.pick(planAddresses),
			PayorID:             fmt.Sprintf("Z%04d", 1000+g.rng.Intn(9000)),
			SubscriberFirstName: g.pick(firstNames),
			SubscriberLastName:  id.LastName,
			SubscriberDOB:       g.dateBetween(1965, 1990),
			SubscriberID:        fmt.Sprintf("SUB%08d", g.rng.Intn(100000000)),
		},
		DocumentInformation: DocumentInformation{
			DocumentStatus: DocumentCompleted,
			DateCompleted:  datePtr(Date{Time: g.now().Truncate(24 * time.Hour)}),
			CompletedBy:    id.Author,
			FollowUpNotes:  g.pick(verificationNotes),
		},
		BenefitInformation: BenefitInformation{
			InNetworkWithPlan:           g.yesNo(),
			TaxProcessedAs:              TaxABAProvider,
			IndividualDeductible:        indDeductible,
			IndividualDeductibleMet:     indDeductible * g.amount([]float64{0, 0.25, 0.5, 0.75}),
			FamilyDeductible:            famDeductible,
			FamilyDeductibleMet:         famDeductible * g.amount([]float64{0, 0.25, 0.5}),
			IndividualOPM:               indOPM,
			IndividualOPMMet:            indOPM * g.amount([]float64{0, 0.1, 0.2}),
			FamilyOPM:                   famOPM,
			FamilyOPMMet:                famOPM * g.amount([]float64{0, 0.1}),
			AccumulationsRunOn:          RunCalendarYear,
			ServicesCovered100Percent:   g.yesNo(),
			BenefitApply:                ApplyIndividual,
			BenefitType:                 "Behavioral Health Outpatient",
			CoinsurancePercentage:       g.amount([]float64{0, 10, 20, 30}),
			CopayPerVisit:               g.amount([]float64{0, 15, 25, 40, 50}),
			CopaysApplyToOPM:            g.yesNo(),
			DeductibleAppliesToOPM:      g.yesNo(),
			DeductibleBeforeCoinsurance: g.yesNo(),
		},
		PlaceOfService: PlaceOfServiceFlags{
			Telehealth: g.yesNo(),
			School:     g.yesNo(),
			Office:     Yes,
			Home:       g.yesNo(),
			Community:  g.yesNo(),
		},
		BenefitDetails: BenefitDetails{
			PriorAuthRequiredEvaluation: g.yesNo(),
			PriorAuthRequiredTherapy:    g.yesNo(),
			MaxCapExists:                g.yesNo(),
			PreExistingExclusions:       No,
		},
		Coordination: CoordinationOfBenefits{
			ClientHasOtherInsurances:   No,
			PayorStatus:                PayorPrimary,
			COBCompletionDate:          datePtr(Date{Time: g.now().Truncate(24 * time.Hour)}),
			BenefitsMatchPortalInquiry: Yes,
		},
		PayorContact: PayorContact{
			PayorRepName:        g.pick(payorReps),
			CallReferenceNumber: fmt.Sprintf("REF%09d", g.rng.Intn(1000000000)),
			DateOfCall:          Date{Time: g.now().Truncate(24 * time.Hour)},
		},
		OtherDetails: OtherBenefitDetails{
			BenefitDetails: g.pick(otherBenefitNotes),
		},
		Summary: SummaryInformation{
			SendBenefitCheckSummary:  Yes,
			PopupBenefitCheckSummary: g.yesNo(),
			DocumentStatus:           DocumentCompleted,
			FollowUpNotes:            g.pick(summaryNotes),
		},
	}

	if rec.BenefitDetails.PriorAuthRequiredEvaluation == Yes || rec.BenefitDetails.PriorAuthRequiredTherapy == Yes {
		rec.BenefitDetails.PriorAuthSubmissionDetails = g.priorAuthInfo()
	}
	if rec.BenefitDetails.MaxCapExists == Yes {
		rec.BenefitDetails.MaxCapAmount = floatPtr(g.amount([]float64{1500, 2000, 2500, 3000, 5000}))
		rec.BenefitDetails.VisitLimitPerYear = intPtr(12 + g.rng.Intn(19))
	}
	return rec
}

// SOAPNote generates a clinical SOAP note that passes Validate.
func (g *Generator) SOAPNote(id Identity) *SOAPNoteRecord {
	g.fillIdentity(&id)

	status := []IntakeStatus{StatusDecisionNeeded, StatusOnHold, StatusApproved}[g.rng.Intn(3)]
	now := g.now()

	rec := &SOAPNoteRecord{
		Components: SOAPComponents{
			Subjective: g.pick(subjectiveNotes),
			Objective:  g.pick(objectiveNotes),
			Assessment: g.pick(assessmentNotes),
			Plan:       g.pick(planNotes),
		},
		ClientDetails: ClientDetails{
			IntakeClientID:    id.NumericID,
			FirstName:         id.FirstName,
			LastName:          id.LastName,
			BirthDate:         id.BirthDate,
			ClinicPreference1: g.pick([]string{"Downtown Clinic", "Northside Clinic", "Westside Clinic", "Eastside Clinic"}),
			ClinicPreference2: g.pick([]string{"Community Health Center", "Wellness Center", "Mental Health Clinic"}),
			ClinicPreference3: g.pick([]string{"Telehealth Services", "Mobile Clinic", "University Clinic"}),
			Availability: g.pick([]string{
				"Weekdays 9 AM - 5 PM",
				"Evenings after 6 PM",
				"Weekends only",
				"Flexible scheduling",
				"Mornings before 11 AM",
			}),
		},
		IntakeAvailability: IntakeAvailability{
			Status:        status,
			FollowUpNotes: "Client has been processed through intake and is ready for treatment services. All required documentation has been completed.",
		},
		Insurance: SOAPInsurance{
			PlanName: g.pick(planNames),
		},
		BenefitDetails: SOAPBenefitDetails{
			PriorAuthRequiredEvaluation: g.rng.Intn(2) == 0,
			PriorAuthRequiredTherapy:    g.rng.Intn(2) == 0,
			HasMaxCap:                   g.rng.Intn(2) == 0,
		},
		PlaceOfService: PlaceOfServiceCoverage{
			Telehealth: g.posBenefit(),
			School:     g.posBenefit(),
			Office:     g.posBenefit(),
			Home:       g.posBenefit(),
			Community:  g.posBenefit(),
		},
		DocumentInformation: SOAPDocumentInformation{
			DocumentStatus:    DocumentCompleted,
			DateTimeCompleted: &DateTime{Time: now},
			CompletedBy:       id.Author,
			PlaceOfServiceCovered: g.pick([]string{
				"Office, Telehealth",
				"Office, Home, Community",
				"Telehealth only",
				"Office, School, Community",
				"All locations covered",
			}),
			FollowUpNotes: "Benefit verification completed successfully. All required authorizations are in place for treatment to begin as scheduled.",
		},
		CreatedAt: DateTime{Time: now},
		CreatedBy: id.Author,
	}

	if status == StatusOnHold {
		rec.IntakeAvailability.HoldReason = g.pick(holdReasons)
	}
	if rec.BenefitDetails.PriorAuthRequiredEvaluation || rec.BenefitDetails.PriorAuthRequiredTherapy {
		rec.BenefitDetails.PriorAuthInfo = g.priorAuthInfo()
	}
	if rec.BenefitDetails.HasMaxCap {
		rec.BenefitDetails.MaxCapAmount = floatPtr(g.amount([]float64{1500, 2000, 2500, 3000}))
		rec.BenefitDetails.VisitLimitPerYear = intPtr(12 + g.rng.Intn(19))
	}
	return rec
}

func (g *Generator) priorAuthInfo() string {
	return fmt.Sprintf("Prior authorization approved for %d sessions, reference number: PA%09d",
		8+g.rng.Intn(13), 100000000+g.rng.Intn(900000000))
}

func datePtr(d Date) *Date        { return &d }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// ---------------------------------------------------------------------------
// Data pools
// ---------------------------------------------------------------------------

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
}

var authors = []string{
	"Dr. Smith", "Dr. Patel", "Dr. Nguyen", "Maria Gonzalez, RN", "James Carter, LCSW",
}

var planNames = []string{
	"Blue Cross Blue Shield Standard",
	"Aetna Better Health",
	"UnitedHealthcare Community Plan",
	"Medicaid Managed Care",
	"Cigna HealthSpring",
}

var planAddresses = []string{
	"PO Box 660044, Dallas, TX 75266",
	"PO Box 981106, El Paso, TX 79998",
	"PO Box 30555, Salt Lake City, UT 84130",
	"PO Box 52080, Phoenix, AZ 85072",
}

var payorReps = []string{
	"Angela Torres", "Marcus Webb", "Dana Kim", "Felicia Brooks", "Omar Reyes",
}

var subjectiveNotes = []string{
	"Patient reports feeling overwhelmed with work responsibilities and experiencing sleep difficulties for the past 2 weeks.",
	"Client describes persistent worry about family finances and reports physical symptoms including headaches and muscle tension.",
	"Patient states they have been feeling sad and unmotivated for the past month, with decreased appetite and social withdrawal.",
	"Client reports difficulty managing anger and frustration, particularly in interpersonal relationships.",
	"Patient describes panic attacks occurring 2-3 times per week, with symptoms including rapid heartbeat and shortness of breath.",
}

var objectiveNotes = []string{
	"Patient appears well-groomed and cooperative. Speech is clear and goal-directed. Mood appears anxious with congruent affect.",
	"Client maintains good eye contact and appears alert. Speech is soft-spoken but coherent. Mood appears depressed with restricted affect.",
	"Patient appears restless and fidgety. Speech is rapid and pressured. Mood appears irritable with labile affect.",
	"Client appears calm and engaged. Speech is clear and organized. Mood appears stable with appropriate affect.",
	"Patient appears tired but cooperative. Speech is slow and deliberate. Mood appears dysthymic with blunted affect.",
}

var assessmentNotes = []string{
	"Generalized Anxiety Disorder (F41.1). Patient presents with classic symptoms of anxiety affecting occupational and social functioning.",
	"Major Depressive Disorder, single episode, moderate severity (F32.1). Symptoms consistent with clinical depression.",
	"Adjustment Disorder with Mixed Anxiety and Depressed Mood (F43.23). Symptoms related to recent life stressors.",
	"Panic Disorder without Agoraphobia (F41.0). Recurrent panic attacks with anticipatory anxiety.",
	"Intermittent Explosive Disorder (F63.81). Difficulty with anger management and impulse control.",
}

var planNotes = []string{
	"1. Begin weekly cognitive behavioral therapy sessions. 2. Implement relaxation techniques and stress management strategies. 3. Monitor symptoms and reassess in 4 weeks.",
	"1. Initiate individual psychotherapy twice weekly. 2. Develop coping strategies for depressive symptoms. 3. Safety planning and risk assessment. 4. Follow-up in 2 weeks.",
	"1. Start supportive therapy sessions. 2. Psychoeducation about adjustment disorders. 3. Develop healthy coping mechanisms. 4. Reassess in 3 weeks.",
	"1. Begin panic disorder treatment protocol. 2. Breathing exercises and grounding techniques. 3. Gradual exposure therapy. 4. Weekly sessions for 8 weeks.",
	"1. Anger management therapy sessions. 2. Cognitive restructuring techniques. 3. Impulse control strategies. 4. Bi-weekly sessions initially.",
}

var holdReasons = []string{
	"Awaiting updated insurance card from the family before benefits can be confirmed and scheduling finalized.",
	"Client requested a delay in starting services until the next school term begins, follow up at that time.",
	"Primary care referral documentation is incomplete, waiting on the referring office to send the full packet.",
}

var verificationNotes = []string{
	"All verification completed successfully. No issues identified with the plan coverage or authorization requirements.",
	"Coverage confirmed with payor representative. Deductible and out-of-pocket figures recorded from the call reference.",
	"Verification call completed. Plan requires annual re-verification at the start of the next calendar year.",
}

var summaryNotes = []string{
	"Benefits verified and active. Client ready to begin services once the intake paperwork has been signed.",
	"Summary prepared and queued for delivery to the family. No outstanding questions from the verification call.",
}

var otherBenefitNotes = []string{
	"Telehealth sessions covered at the same rate as office visits. No referral required from primary care.",
	"Plan covers parent training sessions when billed under the primary client. School-based services require a separate authorization.",
	"Out-of-network benefits are not available under this plan. All services must be rendered by in-network providers.",
}
