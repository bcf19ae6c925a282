package survey

// DefaultQuestions returns the built-in agree/disagree questionnaire. The slice
// is freshly allocated on each call so callers can never mutate the source set.
func DefaultQuestions() []Question {
	return []Question{
		{ID: 1, Prompt: "I often notice small sounds when others do not."},
		{ID: 2, Prompt: "I usually concentrate more on the whole picture, rather than the small details."},
		{ID: 3, Prompt: "I find it easy to do more than one thing at once."},
		{ID: 4, Prompt: "If there is an interruption, I can switch back to what I was doing very quickly."},
		{ID: 5, Prompt: "I find it easy to read between the lines when someone is talking to me."},
		{ID: 6, Prompt: "I know how to tell if someone listening to me is getting bored."},
		{ID: 7, Prompt: "When I'm reading a story, I find it difficult to work out the characters' intentions."},
		{ID: 8, Prompt: "I like to collect information about categories of things."},
		{ID: 9, Prompt: "I find it easy to work out what someone is thinking or feeling just by looking at their face."},
		{ID: 10, Prompt: "I find it difficult to work out people's intentions."},
	}
}
