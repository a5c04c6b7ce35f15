package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/medisearch"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/ingestion"
)

type seedDocument struct {
	title        string
	content      string
	patientID    string
	documentType string
	tags         []string
}

var seedDocuments = []seedDocument{
	{
		title:        "Hypertension follow-up visit",
		patientID:    "patient-001",
		documentType: "clinical_note",
		tags:         []string{"cardiology"},
		content: "Patient returns for scheduled hypertension follow-up. Blood pressure " +
			"measured at 148/92 in the left arm, seated. Currently taking lisinopril 10mg " +
			"daily with good adherence reported. Denies headache, visual changes, or chest " +
			"pain. Mild ankle swelling noted in the evenings. Plan: increase lisinopril to " +
			"20mg daily, repeat basic metabolic panel in two weeks, home blood pressure log " +
			"requested. Counseled on sodium restriction and regular walking.",
	},
	{
		title:        "Comprehensive metabolic panel results",
		patientID:    "patient-001",
		documentType: "lab_report",
		tags:         []string{"laboratory"},
		content: "Comprehensive metabolic panel drawn at morning fasting draw. Sodium 139 " +
			"mmol/L, potassium 4.2 mmol/L, chloride 103 mmol/L, creatinine 1.1 mg/dL with " +
			"eGFR 72. Glucose 108 mg/dL, mildly elevated. Liver enzymes within normal " +
			"limits: AST 24 U/L, ALT 31 U/L. Calcium 9.4 mg/dL. Results reviewed and " +
			"released to the ordering physician with a note to recheck fasting glucose " +
			"given borderline elevation and family history of diabetes.",
	},
	{
		title:        "Amoxicillin prescription for acute otitis media",
		patientID:    "patient-002",
		documentType: "prescription",
		tags:         []string{"pediatrics"},
		content: "Amoxicillin 400mg/5mL oral suspension. Sig: 5mL by mouth twice daily for " +
			"ten days for acute otitis media of the right ear. Dispense 100mL with no " +
			"refills. Weight-based dosing confirmed at 45mg/kg/day divided twice daily. " +
			"Caregiver counseled on completing the full course, refrigeration of the " +
			"suspension, and returning if fever persists beyond 48 hours or ear pain " +
			"worsens despite treatment.",
	},
	{
		title:        "Discharge summary after community acquired pneumonia",
		patientID:    "patient-003",
		documentType: "discharge_summary",
		tags:         []string{"pulmonology", "inpatient"},
		content: "Admitted with three days of productive cough, fever to 38.9C, and " +
			"pleuritic chest pain. Chest radiograph demonstrated right lower lobe " +
			"consolidation consistent with community acquired pneumonia. Treated with " +
			"intravenous ceftriaxone and azithromycin, transitioned to oral " +
			"amoxicillin-clavulanate on day three after defervescence. Oxygen saturation " +
			"96% on room air at discharge. Discharged home in stable condition with a " +
			"five day course of oral antibiotics and pulmonology follow-up in four weeks " +
			"with a repeat radiograph to confirm resolution.",
	},
	{
		title:        "Type 2 diabetes annual review",
		patientID:    "patient-004",
		documentType: "clinical_note",
		tags:         []string{"endocrinology"},
		content: "Annual diabetes review. HbA1c 7.4%, improved from 8.1% six months ago on " +
			"metformin 1000mg twice daily. Reports occasional morning hypoglycemia " +
			"symptoms, none severe. Foot examination shows intact sensation to " +
			"monofilament bilaterally, no ulceration. Retinal screening scheduled. Renal " +
			"function stable with urine albumin-to-creatinine ratio within target. Plan: " +
			"continue current metformin dose, reinforce dietary counseling, repeat HbA1c " +
			"in three months.",
	},
	{
		title:        "Emergency visit for ankle injury",
		patientID:    "patient-002",
		documentType: "clinical_note",
		tags:         []string{"orthopedics", "emergency"},
		content: "Presents after inversion injury of the left ankle during basketball. " +
			"Swelling and tenderness over the lateral malleolus, able to bear weight for " +
			"four steps. Ottawa ankle rules negative, no radiograph indicated. Examination " +
			"consistent with grade II lateral ankle sprain. Treated with rest, ice, " +
			"compression wrap, and elevation. Ibuprofen 400mg every six hours as needed " +
			"for pain. Return precautions given for inability to bear weight or worsening " +
			"deformity.",
	},
	{
		title:        "Lipid panel results",
		patientID:    "patient-004",
		documentType: "lab_report",
		tags:         []string{"laboratory", "cardiology"},
		content: "Fasting lipid panel: total cholesterol 228 mg/dL, LDL 148 mg/dL, HDL 42 " +
			"mg/dL, triglycerides 190 mg/dL. LDL above goal for a patient with diabetes. " +
			"Ten year cardiovascular risk estimated at 14 percent. Recommendation sent to " +
			"the ordering physician to discuss initiation of moderate intensity statin " +
			"therapy, with repeat lipid panel twelve weeks after any change in therapy.",
	},
	{
		title:        "Atorvastatin initiation",
		patientID:    "patient-004",
		documentType: "prescription",
		tags:         []string{"cardiology"},
		content: "Atorvastatin 20mg oral tablet. Sig: one tablet by mouth nightly for " +
			"hyperlipidemia. Dispense 90 tablets with three refills. Patient counseled on " +
			"myalgia as a potential side effect and instructed to report unexplained " +
			"muscle pain or dark urine. Baseline liver enzymes documented as normal " +
			"before initiation. Repeat lipid panel and hepatic panel ordered for twelve " +
			"weeks after start.",
	},
}

var (
	dbPath   = flag.String("db", "./medisearch_db", "path to BadgerDB database directory")
	chunked  = flag.Bool("chunked", false, "ingest documents as overlapping chunks")
	seedFile = flag.String("src", "", "file with one additional clinical note per line")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func ingestAll(ctx context.Context, pipeline *ingestion.Pipeline, docs []seedDocument) error {
	for _, doc := range docs {
		req := &ingestion.IngestRequest{
			Title:   doc.title,
			Content: doc.content,
		}
		req.Metadata.PatientID = doc.patientID
		req.Metadata.DocumentType = core.DocumentType(doc.documentType)
		req.Metadata.Tags = doc.tags

		if *chunked {
			report, err := pipeline.IngestChunked(ctx, req)
			if err != nil {
				return fmt.Errorf("chunked ingestion of %q failed: %w", doc.title, err)
			}
			slog.Info("seeded document", "title", doc.title, "id", report.DocumentId, "chunks", report.TotalChunks)
			continue
		}

		id, err := pipeline.Ingest(ctx, req)
		if err != nil {
			return fmt.Errorf("ingestion of %q failed: %w", doc.title, err)
		}
		slog.Info("seeded document", "title", doc.title, "id", id)
	}
	return nil
}

func main() {
	db, err := medisearch.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	docs := seedDocuments
	if *seedFile != "" {
		extra, err := documentsFromFile(*seedFile)
		if err != nil {
			panic(err)
		}
		docs = append(docs, extra...)
	}

	if err := ingestAll(ctx, pipeline, docs); err != nil {
		panic(err)
	}
}

// documentsFromFile reads one clinical note per line. The first words of each
// line become the title.
func documentsFromFile(filename string) ([]seedDocument, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []seedDocument
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		titleLen := len(words)
		if titleLen > 6 {
			titleLen = 6
		}
		docs = append(docs, seedDocument{
			title:        strings.Join(words[:titleLen], " "),
			content:      line,
			documentType: "clinical_note",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
