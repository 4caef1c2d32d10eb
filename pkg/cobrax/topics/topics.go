// Package topics adds help topics to a Cobra CLI: extra documents beyond
// per-command help, read from an fs.FS such as an embedded directory.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help document
type Topic struct {
	Name    string
	Ext     string
	Content string
}

// Options configures a Manager
type Options struct {
	// Extensions lists file extensions treated as topics, default .txt and .md
	Extensions []string

	// Renderer formats topics, default PlainRenderer
	Renderer Renderer
}

// Manager holds the topics found in a filesystem
type Manager struct {
	topics     map[string]*Topic
	extensions []string
	renderer   Renderer
}

// Load reads every topic file below root in fsys
func Load(fsys fs.FS, root string, opts Options) (*Manager, error) {
	m := &Manager{
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".txt", ".md"}
	}
	if m.renderer == nil {
		m.renderer = PlainRenderer{}
	}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !m.supported(path.Ext(p)) {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		ext := path.Ext(p)
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Ext: ext, Content: string(content)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}
	return m, nil
}

func (m *Manager) supported(ext string) bool {
	for _, e := range m.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Get returns the named topic. Flag topics are stored as "option-<flag>"
// and can be asked for by the flag name alone.
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics["option-"+name]
	return t, ok
}

// Names returns every topic name, sorted
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render returns the formatted content of t
func (m *Manager) Render(t *Topic) string {
	return m.renderer.Render(t.Content, t.Ext)
}

// WriteIndex writes the list of topics, flag topics separately
func (m *Manager) WriteIndex(w io.Writer, program string) {
	names := m.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "No help topics available.")
		return
	}

	var general, options []string
	for _, name := range names {
		if opt, ok := strings.CutPrefix(name, "option-"); ok {
			options = append(options, opt)
		} else {
			general = append(general, name)
		}
	}

	fmt.Fprintln(w, "Available help topics:")
	if len(general) > 0 {
		fmt.Fprintln(w, "\nGeneral topics:")
		for _, name := range general {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(options) > 0 {
		fmt.Fprintln(w, "\nOption topics:")
		for _, name := range options {
			fmt.Fprintf(w, "  --%s\n", name)
		}
	}
	fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", program)
}

// Install replaces rootCmd's help command with one that also knows about
// topics, and adds a "topics" command listing them.
func (m *Manager) Install(rootCmd *cobra.Command) {
	originalHelp := rootCmd.HelpFunc()
	program := rootCmd.Name()

	show := func(cmd *cobra.Command, args []string) bool {
		if len(args) == 0 {
			return false
		}
		t, ok := m.Get(args[0])
		if ok {
			fmt.Fprint(cmd.OutOrStdout(), m.Render(t))
		}
		return ok
	}

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic.

To see all available help topics:
  ` + program + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			return append(completions, m.Names()...), cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			switch {
			case len(args) == 0:
				originalHelp(rootCmd, nil)
			case args[0] == "topics":
				m.WriteIndex(cmd.OutOrStdout(), program)
			case show(cmd, args):
			default:
				target, _, err := rootCmd.Find(args)
				if err != nil || target == nil {
					target = rootCmd
				}
				originalHelp(target, args)
			}
		},
	}

	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" {
			rootCmd.RemoveCommand(c)
		}
	}
	rootCmd.SetHelpCommand(helpCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:     "topics [topic]",
		Short:   "List help topics or show one",
		Long:    "Display the help topics that document daglink beyond per-command help.",
		Args:    cobra.MaximumNArgs(1),
		GroupID: rootGroup(rootCmd),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				m.WriteIndex(cmd.OutOrStdout(), program)
				return nil
			}
			if !show(cmd, args) {
				return fmt.Errorf("unknown help topic %q", args[0])
			}
			return nil
		},
	})
}

// rootGroup puts the topics command in the root's last group, if any
func rootGroup(rootCmd *cobra.Command) string {
	groups := rootCmd.Groups()
	if len(groups) == 0 {
		return ""
	}
	return groups[len(groups)-1].ID
}
