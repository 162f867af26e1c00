package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"quizzify"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	cookieName   = "quizzify"
	browserIDKey = "browser_id"
	historySize  = 5

	cookieMaxAge = 86400 * 7
	browserTTL   = cookieMaxAge * time.Second
)

var letters = []string{"A", "B", "C", "D"}

// Server serves the single quiz page. Each browser gets its own
// quizzify.Session, found through an ID kept in a signed cookie.
type Server struct {
	cfg       *quizzify.Config
	generator *quizzify.QuizGenerator
	history   *quizzify.History
	store     *sessions.CookieStore
	tmpl      *template.Template
	validate  *validator.Validate

	mu       sync.Mutex
	browsers map[string]*browser
	idleTTL  time.Duration
}

// browser is the quiz state of one visitor.
type browser struct {
	mu      sync.Mutex
	session *quizzify.Session
	busy    bool
	topic   string
	review  bool

	lastSeen time.Time // guarded by Server.mu
}

type generateForm struct {
	Topic string `validate:"max=200"`
}

// NewServer creates the web server. history may be nil.
func NewServer(cfg *quizzify.Config, generator *quizzify.QuizGenerator, history *quizzify.History) *Server {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	funcMap := template.FuncMap{
		"letter": func(i int) string { return letters[i] },
		"add":    func(a, b int) int { return a + b },
	}

	return &Server{
		cfg:       cfg,
		generator: generator,
		history:   history,
		store:     store,
		tmpl:      template.Must(template.New("index.html").Funcs(funcMap).ParseFS(templateFS, "templates/index.html")),
		validate:  validator.New(),
		browsers:  make(map[string]*browser),
		idleTTL:   browserTTL,
	}
}

// Routes returns the handler for all pages.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /static", s.handleStatic)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("POST /review", s.handleReview)
	return logRequests(mux)
}

// browserFor returns the visitor's state, issuing a new browser ID cookie
// when needed. It must be called before anything is written to w.
func (s *Server) browserFor(w http.ResponseWriter, r *http.Request) (*browser, *sessions.Session) {
	cookie, err := s.store.Get(r, cookieName)
	if err != nil {
		log.Debug().Err(err).Msg("discarding unreadable session cookie")
	}

	id, _ := cookie.Values[browserIDKey].(string)
	if id == "" {
		id = uuid.NewString()
		cookie.Values[browserIDKey] = id
		if err := cookie.Save(r, w); err != nil {
			log.Error().Err(err).Msg("failed to save session cookie")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.browsers[id]
	if !ok {
		b = &browser{session: quizzify.NewSession()}
		s.browsers[id] = b
	}
	b.lastSeen = time.Now()
	return b, cookie
}

// SweepIdle evicts visitors not seen for the idle TTL, every interval,
// until ctx is done.
func (s *Server) SweepIdle(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				log.Debug().Int("evicted", n).Msg("evicted idle browser sessions")
			}
		}
	}
}

// sweep drops visitors idle since before now minus the TTL. A visitor with
// a generation in flight is kept.
func (s *Server) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, b := range s.browsers {
		if now.Sub(b.lastSeen) < s.idleTTL {
			continue
		}
		b.mu.Lock()
		busy := b.busy
		b.mu.Unlock()
		if busy {
			continue
		}
		delete(s.browsers, id)
		evicted++
	}
	return evicted
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, cookie *sessions.Session, msg string) {
	cookie.AddFlash(msg)
	if err := cookie.Save(r, w); err != nil {
		log.Error().Err(err).Msg("failed to save flash message")
	}
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type optionView struct {
	Letter  string
	Value   string
	Checked bool
}

type questionView struct {
	Index   int
	Text    string
	Options []optionView
	Correct bool
}

type pageData struct {
	State     string
	Topic     string
	Busy      bool
	Flashes   []string
	Questions []questionView
	Score     int
	Total     int
	Verdict   string
	Review    []quizzify.ReviewItem
	History   []quizzify.GenerationRecord
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	b, cookie := s.browserFor(w, r)

	data := pageData{Total: quizzify.QuestionCount}
	for _, f := range cookie.Flashes() {
		if msg, ok := f.(string); ok {
			data.Flashes = append(data.Flashes, msg)
		}
	}
	if len(data.Flashes) > 0 {
		if err := cookie.Save(r, w); err != nil {
			log.Error().Err(err).Msg("failed to clear flash messages")
		}
	}

	b.mu.Lock()
	data.State = b.session.State().String()
	data.Topic = b.topic
	data.Busy = b.busy

	answers := b.session.Answers()
	result, submitted := b.session.Result()
	for i, q := range b.session.Questions() {
		data.Questions = append(data.Questions, questionView{
			Index:   i,
			Text:    q.Text,
			Correct: submitted && result.PerQuestionCorrect[i],
			Options: lo.Map(q.Options, func(opt string, j int) optionView {
				return optionView{Letter: letters[j], Value: opt, Checked: answers[i] == opt}
			}),
		})
	}
	if submitted {
		data.Score = result.CorrectCount
		data.Verdict = verdict(result.CorrectCount)
		if b.review {
			data.Review, _ = b.session.Review()
		}
	}
	b.mu.Unlock()

	if s.history != nil {
		records, err := s.history.RecentGenerations(r.Context(), historySize)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load generation history")
		}
		data.History = records
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("template error in index")
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	b, cookie := s.browserFor(w, r)

	form := generateForm{Topic: strings.TrimSpace(r.FormValue("topic"))}
	if err := s.validate.Struct(form); err != nil {
		s.flash(w, r, cookie, "Topics are limited to 200 characters.")
		s.redirectHome(w, r)
		return
	}

	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		s.flash(w, r, cookie, "A quiz is already being generated.")
		s.redirectHome(w, r)
		return
	}
	b.busy = true
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GenerateTimeout)
	defer cancel()

	questions, err := s.generator.Generate(ctx, form.Topic)
	if err == nil {
		err = ctx.Err()
	}

	b.mu.Lock()
	b.busy = false
	if err == nil {
		err = b.session.Load(questions)
	}
	if err == nil {
		b.topic = form.Topic
		b.review = false
	}
	b.mu.Unlock()

	if err != nil {
		s.flash(w, r, cookie, generationMessage(err))
	}
	s.redirectHome(w, r)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	b, cookie := s.browserFor(w, r)

	b.mu.Lock()
	err := b.session.Load(quizzify.StaticProvider{}.Get())
	if err == nil {
		b.topic = "Python basics"
		b.review = false
	}
	b.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("failed to load static quiz")
		s.flash(w, r, cookie, "Could not load the sample quiz.")
	}
	s.redirectHome(w, r)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	b, cookie := s.browserFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	msg := submitAnswers(b.session, r)
	b.mu.Unlock()

	if msg != "" {
		s.flash(w, r, cookie, msg)
	}
	s.redirectHome(w, r)
}

// submitAnswers records the posted answers and submits when all are
// present. It returns a message for the visitor, or "" on success.
func submitAnswers(session *quizzify.Session, r *http.Request) string {
	if session.State() != quizzify.StateAwaitingAnswers {
		return "There is no quiz waiting for answers."
	}

	for i := range quizzify.QuestionCount {
		choice := r.PostFormValue(fmt.Sprintf("answer_%d", i))
		if choice == "" {
			continue
		}
		if err := session.RecordAnswer(i, choice); err != nil {
			log.Warn().Err(err).Int("question", i).Msg("rejected answer")
			return fmt.Sprintf("Question %d: please pick one of the listed options.", i+1)
		}
	}

	if _, err := session.Submit(); err != nil {
		if errors.Is(err, quizzify.ErrIncompleteAnswers) {
			return "Please answer all questions before submitting."
		}
		log.Error().Err(err).Msg("submit failed")
		return "Could not submit your answers."
	}
	return ""
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	b, _ := s.browserFor(w, r)

	b.mu.Lock()
	if b.session.State() == quizzify.StateSubmitted {
		b.review = true
	}
	b.mu.Unlock()

	s.redirectHome(w, r)
}

// generationMessage is the warning shown for a failed generation. Upstream
// and parse failures carry the cause; parse errors never hold model text.
func generationMessage(err error) string {
	switch {
	case errors.Is(err, quizzify.ErrEmptyTopic):
		return "Please enter a topic."
	case errors.Is(err, context.DeadlineExceeded):
		return "Generating the quiz took too long. Please try again. (" + err.Error() + ")"
	case errors.Is(err, quizzify.ErrInvalidOutput):
		return "The model returned a quiz that could not be used. Please try again. (" + err.Error() + ")"
	default:
		return "Quiz generation failed. Please try again. (" + err.Error() + ")"
	}
}

func verdict(correct int) string {
	if correct >= 4 {
		return "Outstanding!"
	}
	return "Good effort, keep practising."
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
