// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RuntimeNotFoundId Id = iota + 1
	InsufficientMemoryId
	HeapBudgetZeroId
	LaunchFailedId
	ConfigLoadFailedId
	HostMemoryQueryFailedId
	InstallPathUnresolvedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown with the given glamour style
// ("dark", "light", "notty", or a path to a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	runtimeNotFoundIssue = &Issue{
		id: RuntimeNotFoundId,
		mdMsg: `
# Could not find java on your system

AstroJournal needs a Java runtime, and running ` + "`java -version`" + ` did not
report one.

## Things you can try:
- Install a Java runtime (JRE 8 or newer)
- Make sure the ` + "`java`" + ` binary is on your PATH:
~~~
$ java -version
~~~
- Point the launcher at a specific binary:
~~~
$ AJLAUNCH_RUNTIME_BINARY=/opt/jdk/bin/java ajlaunch
~~~`,
		extLinks: []HttpLink{"https://adoptium.net/"},
	}

	insufficientMemoryIssue = &Issue{
		id: InsufficientMemoryId,
		mdMsg: `
# Not enough memory to run AstroJournal

The launcher needs at least 200MB of physical memory installed on this
machine before it will start the Java runtime.

## Things you can try:
- Run AstroJournal on a machine with more memory
- If this is a virtual machine, increase its memory allocation`,
	}

	heapBudgetZeroIssue = &Issue{
		id: HeapBudgetZeroId,
		mdMsg: `
# AstroJournal process failed to start

The launcher computed a heap size of 0MB, so the Java runtime was not started.

## Things you can try:
- Check that the launcher executable is inside the AstroJournal directory
- Run ` + "`ajlaunch doctor`" + ` and report its output`,
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# AstroJournal process failed to start

The Java runtime could not be started, or its output could not be read.

## Things you can try:
- Check that the launcher executable is inside the AstroJournal directory
- Check that the application jar exists under ` + "`target/`" + `
- Preview the command without running it:
~~~
$ ajlaunch --dry-run
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The launcher configuration file could not be parsed.

## Things you can try:
- Check the file for CUE syntax errors
- Print the effective defaults:
~~~
$ ajlaunch config show
~~~
- Remove the file to fall back to the built-in defaults`,
	}

	hostMemoryQueryFailedIssue = &Issue{
		id: HostMemoryQueryFailedId,
		mdMsg: `
# Could not read installed memory

The operating system did not report the amount of physical memory.

## Things you can try:
- Run the launcher again
- Report the problem together with the output of ` + "`ajlaunch doctor -v`",
	}

	installPathUnresolvedIssue = &Issue{
		id: InstallPathUnresolvedId,
		mdMsg: `
# Could not locate the AstroJournal directory

The launcher could not determine the directory it was started from.

## Things you can try:
- Start the launcher from the AstroJournal installation directory
- Avoid starting it through a symbolic link that no longer resolves`,
	}

	issues = map[Id]*Issue{
		runtimeNotFoundIssue.Id():       runtimeNotFoundIssue,
		insufficientMemoryIssue.Id():    insufficientMemoryIssue,
		heapBudgetZeroIssue.Id():        heapBudgetZeroIssue,
		launchFailedIssue.Id():          launchFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		hostMemoryQueryFailedIssue.Id(): hostMemoryQueryFailedIssue,
		installPathUnresolvedIssue.Id(): installPathUnresolvedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
