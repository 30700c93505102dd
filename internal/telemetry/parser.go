package telemetry

import (
	"regexp"
	"strconv"
	"strings"
)

// Line grammars are reverse-engineered from observed tesstrain output and
// may drift across tesseract releases. Each rule is best-effort: a line
// that matches a rule but fails numeric extraction degrades to NoOp.
var (
	iterationRe = regexp.MustCompile(`At iteration (\d+)/\d+/\d+.*?BCER train=([0-9.]+)%`)
	bestBCERRe  = regexp.MustCompile(`New best BCER = ([0-9.]+)`)
)

// rule maps a line predicate to an event constructor. Rules are evaluated
// in order; the first match wins.
type rule struct {
	match func(line string) bool
	build func(line string) Event
}

var rules = []rule{
	{
		match: func(line string) bool { return iterationRe.MatchString(line) },
		build: buildIterationUpdate,
	},
	{
		match: func(line string) bool { return strings.Contains(line, "New best BCER") },
		build: buildBestErrorUpdate,
	},
	{
		match: containsAll("Extracting tessdata components"),
		build: phase("Extracting base model components"),
	},
	{
		match: containsAll("unicharset_extractor"),
		build: phase("Extracting character set"),
	},
	{
		match: containsAll("combine_lang_model"),
		build: phase("Creating language model"),
	},
	{
		match: containsAll("lstmtraining", "--traineddata"),
		build: phase("Starting LSTM training"),
	},
	{
		match: containsAll("Finished!"),
		build: phase("Training completed"),
	},
	{
		match: containsAll("tesseract", ".tif", "lstm.train"),
		build: func(string) Event { return SampleProcessed{} },
	},
}

// Parse translates one output line into an Event. It is pure and never
// fails: unrecognized or malformed input yields NoOp.
func Parse(line string) Event {
	for _, r := range rules {
		if r.match(line) {
			return r.build(line)
		}
	}
	return NoOp{}
}

func buildIterationUpdate(line string) Event {
	m := iterationRe.FindStringSubmatch(line)
	if m == nil {
		return NoOp{}
	}
	iteration, err := strconv.Atoi(m[1])
	if err != nil {
		return NoOp{}
	}
	bcer, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return NoOp{}
	}
	return IterationUpdate{Iteration: iteration, BCERPercent: bcer}
}

func buildBestErrorUpdate(line string) Event {
	m := bestBCERRe.FindStringSubmatch(line)
	if m == nil {
		return NoOp{}
	}
	bcer, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return NoOp{}
	}
	return BestErrorUpdate{BCERPercent: bcer}
}

func containsAll(tokens ...string) func(string) bool {
	return func(line string) bool {
		for _, tok := range tokens {
			if !strings.Contains(line, tok) {
				return false
			}
		}
		return true
	}
}

func phase(label string) func(string) Event {
	return func(string) Event { return PhaseChanged{Label: label} }
}
