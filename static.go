package quizzify

// StaticProvider serves a built-in quiz on Python fundamentals. It needs no
// model and never fails.
type StaticProvider struct{}

var staticQuestions = QuestionSet{
	{
		Text:          "Which keyword is used to define a function in Python?",
		Options:       []string{"func", "define", "def", "void"},
		CorrectAnswer: "def",
	},
	{
		Text:          "Which data type is immutable in Python?",
		Options:       []string{"List", "Dictionary", "Set", "Tuple"},
		CorrectAnswer: "Tuple",
	},
	{
		Text:          "What is the correct file extension for Python files?",
		Options:       []string{".pt", ".py", ".pyt", ".p"},
		CorrectAnswer: ".py",
	},
	{
		Text:          "Which of these is used for multi-line comments in Python?",
		Options:       []string{"//", "#", "'''", "--"},
		CorrectAnswer: "'''",
	},
	{
		Text:          "What is the output of 2**3 in Python?",
		Options:       []string{"6", "8", "9", "5"},
		CorrectAnswer: "8",
	},
}

// Get returns a fresh copy of the built-in quiz.
func (StaticProvider) Get() QuestionSet {
	return staticQuestions.clone()
}
