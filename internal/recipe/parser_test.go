package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	doc := Parse("")
	assert.True(t, doc.Empty())
	assert.Zero(t, doc.LineCount())
	assert.Empty(t, doc.Units())

	_, ok := doc.FirstUnit()
	assert.False(t, ok)
}

func TestParse_KeepsEveryPhysicalLine(t *testing.T) {
	t.Parallel()

	text := "# syntax comment\n\nFROM alpine:3.20\n\nRUN apk add curl\n"
	doc := Parse(text)

	require.Equal(t, 5, doc.LineCount())
	assert.Equal(t, DirectiveComment, doc.Lines()[0].Directive)
	assert.Equal(t, DirectiveBlank, doc.Lines()[1].Directive)
	assert.Equal(t, DirectiveFrom, doc.Lines()[2].Directive)
	assert.Equal(t, DirectiveBlank, doc.Lines()[3].Directive)
	assert.Equal(t, DirectiveRun, doc.Lines()[4].Directive)

	for i, line := range doc.Lines() {
		assert.Equal(t, i, line.Index)
	}
}

func TestParse_DirectiveClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want Directive
	}{
		{"upper", "FROM alpine", DirectiveFrom},
		{"lower", "from alpine", DirectiveFrom},
		{"mixed", "From alpine", DirectiveFrom},
		{"indented", "   USER 1000", DirectiveUser},
		{"unknown token", "FORM alpine", DirectiveUnknown},
		{"comment", "# FROM alpine", DirectiveComment},
		{"blank", "   ", DirectiveBlank},
		{"label", "LABEL org.opencontainers.image.title=\"x\"", DirectiveLabel},
		{"healthcheck", "HEALTHCHECK CMD curl -f http://localhost/", DirectiveHealthcheck},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := Parse(tt.line)
			require.Equal(t, 1, doc.LineCount())
			assert.Equal(t, tt.want, doc.Lines()[0].Directive)
		})
	}
}

func TestParse_ContinuationJoining(t *testing.T) {
	t.Parallel()

	text := "FROM alpine:3.20\nRUN apk add --no-cache \\\n    curl \\\n    tini\nUSER 1000"
	doc := Parse(text)

	units := doc.Units()
	require.Len(t, units, 3)

	run := units[1]
	assert.Equal(t, DirectiveRun, run.Directive)
	assert.Equal(t, 1, run.Start)
	assert.Equal(t, 3, run.End)
	assert.Equal(t, "apk add --no-cache     curl     tini", run.Args)

	// Physical indices of the continuation lines survive in the line list.
	assert.Equal(t, DirectiveUnknown, doc.Lines()[2].Directive)
	assert.Equal(t, 2, doc.Lines()[2].Index)

	user := units[2]
	assert.Equal(t, DirectiveUser, user.Directive)
	assert.Equal(t, 4, user.Start)
	assert.Equal(t, 4, user.End)
}

func TestParse_CommentInsideContinuation(t *testing.T) {
	t.Parallel()

	text := "RUN apk add \\\n# keep curl for healthchecks\n    curl"
	doc := Parse(text)

	units := doc.Units()
	require.Len(t, units, 1)
	assert.Equal(t, "apk add     curl", units[0].Args)
	assert.Equal(t, 0, units[0].Start)
	assert.Equal(t, 2, units[0].End)
	assert.NotContains(t, units[0].Raw, "healthchecks")
}

func TestParse_TrailingBackslashOnLastLine(t *testing.T) {
	t.Parallel()

	doc := Parse("RUN echo hello \\")
	units := doc.Units()
	require.Len(t, units, 1)
	assert.Equal(t, `echo hello \`, units[0].Args)
	assert.Equal(t, 0, units[0].End)
}

func TestParse_NormalizesLineEndings(t *testing.T) {
	t.Parallel()

	doc := Parse("FROM alpine\r\nRUN true\rUSER 1000\n")
	require.Equal(t, 3, doc.LineCount())
	assert.Equal(t, "FROM alpine", doc.Lines()[0].Raw)
	assert.Equal(t, "RUN true", doc.Lines()[1].Raw)
	assert.Equal(t, "USER 1000", doc.Lines()[2].Raw)
}

func TestParse_TrailingNewlineDoesNotAddLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Parse("FROM alpine\n").LineCount())
	assert.Equal(t, 2, Parse("FROM alpine\n\n").LineCount())
	assert.Equal(t, 1, Parse("\n").LineCount())
}

func TestDocument_UnitsOf(t *testing.T) {
	t.Parallel()

	text := "FROM alpine\nRUN a\nRUN b\nCOPY . /app\nRUN c"
	doc := Parse(text)

	runs := doc.UnitsOf(DirectiveRun)
	require.Len(t, runs, 3)
	assert.Equal(t, "a", runs[0].Args)
	assert.Equal(t, "c", runs[2].Args)

	froms := doc.UnitsOf(DirectiveFrom)
	require.Len(t, froms, 1)
	assert.Equal(t, 1, froms[0].LineNumber())

	assert.Empty(t, doc.UnitsOf(DirectiveEntrypoint))
}

func TestDocument_FirstUnitSkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()

	doc := Parse("# header\n\nARG CN_VERSION=1.0.0\nFROM alpine")
	first, ok := doc.FirstUnit()
	require.True(t, ok)
	assert.Equal(t, DirectiveArg, first.Directive)
	assert.Equal(t, 2, first.Start)
}

func TestUnit_JSONArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		want     []string
		wantExec bool
	}{
		{"exec form", `ENTRYPOINT ["tini", "-g", "--"]`, []string{"tini", "-g", "--"}, true},
		{"shell form", "ENTRYPOINT tini -g --", nil, false},
		{"malformed array", `ENTRYPOINT ["tini",`, nil, false},
		{"non-string array", `ENTRYPOINT [1, 2]`, nil, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := Parse(tt.text)
			units := doc.Units()
			require.Len(t, units, 1)

			args, ok := units[0].JSONArgs()
			assert.Equal(t, tt.wantExec, ok)
			assert.Equal(t, tt.want, args)
		})
	}
}

func TestDirective_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FROM", DirectiveFrom.String())
	assert.Equal(t, "ENTRYPOINT", DirectiveEntrypoint.String())
	assert.Equal(t, "UNKNOWN", DirectiveUnknown.String())
}
