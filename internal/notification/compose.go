package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"hiring_pipeline_backend/internal/email"
	"hiring_pipeline_backend/internal/exports"
	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/pdf"

	"github.com/skip2/go-qrcode"
)

const (
	qrFileName   = "video-screen-qr.png"
	qrImageSize  = 256
	mimePNG      = "image/png"
	mimePDF      = "application/pdf"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	displayStart = "Mon Jan 2, 2006 15:04 MST"
)

var errNoApplicant = errors.New("notification has no applicant")

type delivery struct {
	msg      email.Message
	whatsApp *whatsAppNudge
}

type whatsAppNudge struct {
	phone    string
	text     string
	fileName string
	image    []byte
}

func (m *Module) compose(ctx context.Context, n hiring.Notification) (delivery, error) {
	var a *hiring.Applicant
	if n.ApplicantID != nil && m.applicants != nil {
		got, err := m.applicants.Get(ctx, *n.ApplicantID)
		switch {
		case err == nil:
			a = &got
		case n.Template != hiring.TemplateEscalation:
			return delivery{}, fmt.Errorf("load applicant %s: %w", n.ApplicantID, err)
		}
	}
	if a == nil && n.Template != hiring.TemplateEscalation && n.Template != hiring.TemplateWeeklyDigest {
		return delivery{}, errNoApplicant
	}

	var (
		d   delivery
		err error
	)
	switch n.Template {
	case hiring.TemplateVideoInvite:
		d, err = m.videoInvite(*a, n)
	case hiring.TemplateZoomInvite:
		d, err = m.zoomInvite(*a, n)
	case hiring.TemplateRejection:
		d, err = m.candidateEmail(*a, "rejection.html", "Update on your "+m.opts.CompanyName+" application", string(n.Stage))
	case hiring.TemplateOffer:
		d, err = m.candidateEmail(*a, "offer.html", "Welcome to "+m.opts.CompanyName, string(n.Stage))
	case hiring.TemplateStageUpdate:
		d, err = m.stageUpdate(*a, n)
	case hiring.TemplateFounderDossier:
		d, err = m.founderDossier(ctx, *a, n)
	case hiring.TemplateDecisionSummary:
		d, err = m.decisionSummary(*a, n)
	case hiring.TemplateFounderReview:
		d, err = m.founderReview(*a)
	case hiring.TemplateEscalation:
		d, err = m.escalationAlert(a, n)
	case hiring.TemplateWeeklyDigest:
		d, err = m.weeklyDigest(ctx, n)
	default:
		return delivery{}, fmt.Errorf("unsupported template %q", n.Template)
	}
	if err != nil {
		return delivery{}, err
	}
	d.msg.To = m.recipients(n.Audience, a)
	return d, nil
}

func (m *Module) base(title, heading, subheading string) email.Base {
	return email.Base{Title: title, Heading: heading, Subheading: subheading, CompanyName: m.opts.CompanyName}
}

func render(name, subject string, data any) (delivery, error) {
	html, err := email.Render(name, data)
	if err != nil {
		return delivery{}, err
	}
	return delivery{msg: email.Message{Subject: subject, HTML: html}}, nil
}

func (m *Module) videoInvite(a hiring.Applicant, n hiring.Notification) (delivery, error) {
	link := n.Vars[hiring.VarLink]
	if link == "" {
		return delivery{}, errors.New("video invite has no recording link")
	}
	qr, err := qrcode.Encode(link, qrcode.Medium, qrImageSize)
	if err != nil {
		m.log.Warn("failed to render video invite qr code", "applicant_id", a.ID.String(), "error", err)
		qr = nil
	}

	data := email.CandidateData{
		Base:      m.base("Your video screen", "Next step: a short video screen", ""),
		FirstName: a.FirstName(),
		HasQRCode: len(qr) > 0,
	}
	data.CTALabel = "Record your answers"
	data.CTAURL = link

	d, err := render("video_invite.html", "Next step: "+m.opts.CompanyName+" video screen (5 min)", data)
	if err != nil {
		return delivery{}, err
	}
	if len(qr) > 0 {
		d.msg.Attachments = []email.Attachment{{Content: qr, FileName: qrFileName, MIMEType: mimePNG}}
	}
	d.whatsApp = &whatsAppNudge{
		phone:    a.Phone,
		text:     fmt.Sprintf("Hi %s, thanks for applying to %s! Your next step is a 5-minute video screen: %s", a.FirstName(), m.opts.CompanyName, link),
		fileName: qrFileName,
		image:    qr,
	}
	return d, nil
}

func (m *Module) zoomInvite(a hiring.Applicant, n hiring.Notification) (delivery, error) {
	link := n.Vars[hiring.VarLink]
	if link == "" {
		return delivery{}, errors.New("zoom invite has no booking link")
	}
	data := email.CandidateData{
		Base:      m.base("Let's talk", "Let's talk", "A short video call with the founders"),
		FirstName: a.FirstName(),
	}
	data.CTALabel = "Book your interview"
	data.CTAURL = link

	d, err := render("zoom_invite.html", m.opts.CompanyName+": let's talk (15 min Zoom)", data)
	if err != nil {
		return delivery{}, err
	}
	d.whatsApp = &whatsAppNudge{
		phone: a.Phone,
		text:  fmt.Sprintf("Hi %s, the %s founders would like to meet you. Book a time here: %s", a.FirstName(), m.opts.CompanyName, link),
	}
	return d, nil
}

func (m *Module) candidateEmail(a hiring.Applicant, tmpl, subject, stage string) (delivery, error) {
	return render(tmpl, subject, email.CandidateData{
		Base:      m.base(subject, subject, ""),
		FirstName: a.FirstName(),
		Stage:     stage,
	})
}

func (m *Module) stageUpdate(a hiring.Applicant, n hiring.Notification) (delivery, error) {
	outcome := n.Vars[hiring.VarOutcome]
	if outcome == "" {
		outcome = hiring.OutcomePassed
	}
	composite := 0
	if s := stageScore(a, n.Stage); s != nil {
		composite = s.Composite
	}
	subject := fmt.Sprintf("[Hiring] %s %s %s screen (%d/100)", a.Name, strings.ToUpper(outcome), n.Stage, composite)

	data := m.founderData(a, "Stage update", n.Stage)
	data.Stage = string(n.Stage)
	data.Outcome = outcome
	return render("stage_update.html", subject, data)
}

func (m *Module) founderDossier(ctx context.Context, a hiring.Applicant, n hiring.Notification) (delivery, error) {
	start := displayTime(n.Vars[hiring.VarStart])

	var links []pdf.Link
	if m.media != nil && len(a.VideoPaths) > 0 {
		urls, err := m.media.VideoLinks(ctx, a.VideoPaths, m.opts.DossierLinkTTL)
		if err != nil {
			m.log.Warn("failed to sign dossier video links", "applicant_id", a.ID.String(), "error", err)
		}
		for i, u := range urls {
			links = append(links, pdf.Link{Label: fmt.Sprintf("Answer %d", i+1), URL: u})
		}
	}

	doc, err := pdf.GenerateDossier(pdf.DossierData{
		Applicant:   a,
		Rubric:      m.opts.Rubric,
		VideoLinks:  links,
		CompanyName: m.opts.CompanyName,
		GeneratedAt: m.now(),
	})
	if err != nil {
		return delivery{}, fmt.Errorf("generate dossier: %w", err)
	}

	data := m.founderData(a, "Interview dossier", hiring.StageVideo)
	data.Start = start
	data.Answers = make([]email.QA, 0, hiring.AnswerCount)
	for i, answer := range a.Answers {
		data.Answers = append(data.Answers, email.QA{Question: hiring.QuestionLabels[i], Answer: answer})
	}
	for _, l := range links {
		data.VideoLinks = append(data.VideoLinks, email.Link{Label: l.Label, URL: l.URL})
	}
	if a.AppScore != nil {
		data.ResumeSummary = a.AppScore.ResumeSummary
	}

	d, err := render("founder_dossier.html", fmt.Sprintf("[Interview] %s on %s", a.Name, start), data)
	if err != nil {
		return delivery{}, err
	}
	d.msg.Attachments = []email.Attachment{{
		Content:  doc,
		FileName: "dossier-" + slug(a.Name) + ".pdf",
		MIMEType: mimePDF,
	}}
	return d, nil
}

func (m *Module) decisionSummary(a hiring.Applicant, n hiring.Notification) (delivery, error) {
	final := n.Vars[hiring.VarFinal]
	decision := hiring.Decision(n.Vars[hiring.VarDecision])

	data := m.founderData(a, "Hiring decision", hiring.StageFinal)
	data.Final = final
	data.Decision = decisionLabel(decision)
	data.AppPoints = n.Vars[hiring.VarAppPoints]
	data.VideoPoints = n.Vars[hiring.VarVideoPoints]
	data.ZoomPoints = n.Vars[hiring.VarZoomPoints]
	data.ZoomAverage = n.Vars[hiring.VarZoomAverage]
	data.GutOverride, _ = strconv.ParseBool(n.Vars[hiring.VarGutOverride])
	if a.Interview != nil {
		data.InterviewNote = a.Interview.Notes
	}
	return render("decision_summary.html", fmt.Sprintf("[Decision] %s: %s (%s/100)", a.Name, data.Decision, final), data)
}

func (m *Module) founderReview(a hiring.Applicant) (delivery, error) {
	data := m.founderData(a, "Review needed", hiring.StageFinal)
	if a.FinalComposite != nil {
		data.Final = strconv.Itoa(*a.FinalComposite)
	}
	data.GutOverride = a.Interview != nil && a.Interview.GutCheck == hiring.GutNo
	return render("founder_review.html", fmt.Sprintf("[Review] %s needs a founder decision", a.Name), data)
}

func (m *Module) escalationAlert(a *hiring.Applicant, n hiring.Notification) (delivery, error) {
	data := email.EscalationData{
		Base:     m.base("Pipeline error", "Pipeline error", "Stage "+string(n.Stage)),
		Stage:    string(n.Stage),
		Message:  n.Vars[hiring.VarErrorMessage],
		Provider: n.Vars[hiring.VarErrorProvider],
	}
	subject := fmt.Sprintf("[Hiring error] %s failed", n.Stage)
	if n.ApplicantID != nil {
		data.ApplicantID = n.ApplicantID.String()
	}
	if a != nil {
		data.Name = a.Name
		subject += ": " + a.Name
	}
	return render("escalation_alert.html", subject, data)
}

func (m *Module) weeklyDigest(ctx context.Context, n hiring.Notification) (delivery, error) {
	digest, err := exports.DigestFromVars(n.Vars)
	if err != nil {
		return delivery{}, err
	}

	data := email.DigestData{
		Base:             m.base("Hiring pipeline digest", "Hiring pipeline digest", "Weekly summary"),
		Since:            digest.Since.Format("Jan 2, 2006"),
		NewApplications:  digest.NewApplications,
		HiredInWindow:    digest.HiredInWindow,
		RejectedInWindow: digest.RejectedInWindow,
		Total:            digest.Total,
	}
	for _, s := range hiring.AllStatuses {
		data.ByStatus = append(data.ByStatus, email.StatusCount{Status: string(s), Count: digest.ByStatus[s]})
	}

	d, err := render("weekly_digest.html", "[Hiring] Weekly pipeline digest: "+digest.GeneratedAt.Format("Jan 2"), data)
	if err != nil {
		return delivery{}, err
	}
	if m.workbooks != nil {
		book, err := m.workbooks.Workbook(ctx)
		if err != nil {
			return delivery{}, fmt.Errorf("build digest workbook: %w", err)
		}
		d.msg.Attachments = []email.Attachment{{
			Content:  book,
			FileName: exports.WorkbookFileName(digest.GeneratedAt),
			MIMEType: mimeXLSX,
		}}
	}
	return d, nil
}

// founderData fills the applicant block and every score recorded up to stage.
func (m *Module) founderData(a hiring.Applicant, heading string, upTo hiring.Stage) email.FounderData {
	data := email.FounderData{
		Base:        m.base(heading, heading, a.Name),
		ApplicantID: a.ID.String(),
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Source:      a.Source.Label(),
	}
	if a.AppScore != nil {
		data.Scores = append(data.Scores, m.scoreBlock("Application", *a.AppScore, hiring.StageApplication))
	}
	if a.VideoScore != nil && upTo != hiring.StageApplication {
		data.Scores = append(data.Scores, m.scoreBlock("Video", *a.VideoScore, hiring.StageVideo))
	}
	return data
}

func (m *Module) scoreBlock(label string, s hiring.Score, stage hiring.Stage) email.ScoreBlock {
	block := email.ScoreBlock{
		Label:     label,
		Composite: s.Composite,
		Pass:      s.Pass,
		Summary:   s.Summary,
		Strengths: s.Strengths,
		Concerns:  s.Concerns,
		RedFlags:  s.RedFlags,
	}
	rubric, err := m.opts.Rubric.For(stage)
	if err != nil {
		return block
	}
	seen := make(map[string]bool, len(rubric.Dimensions))
	for _, dim := range rubric.Dimensions {
		if v, ok := s.Dimensions[dim.Key]; ok {
			block.Dimensions = append(block.Dimensions, email.DimensionLine{Label: dim.Label, Score: v})
			seen[dim.Key] = true
		}
	}
	var extra []string
	for k := range s.Dimensions {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		block.Dimensions = append(block.Dimensions, email.DimensionLine{Label: k, Score: s.Dimensions[k]})
	}
	return block
}

func stageScore(a hiring.Applicant, stage hiring.Stage) *hiring.Score {
	switch stage {
	case hiring.StageApplication:
		return a.AppScore
	case hiring.StageVideo:
		return a.VideoScore
	}
	return nil
}

func decisionLabel(d hiring.Decision) string {
	switch d {
	case hiring.DecisionHire:
		return "Hire"
	case hiring.DecisionReview:
		return "Needs review"
	case hiring.DecisionReject:
		return "Reject"
	}
	return string(d)
}

// displayTime renders an RFC 3339 start for humans and passes anything else through.
func displayTime(raw string) string {
	if raw == "" {
		return "TBD"
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(displayStart)
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
