package cmd

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/hwforge/xactgen/pkg/ipxact"
	"github.com/hwforge/xactgen/pkg/utils"
)

var browseBusWidth int

var browseCmd = &cobra.Command{
	Use:   "browse <document>",
	Short: "Interactively browse a register map document",
	Long: `Opens an interactive tree view of a register map document: memory maps,
address blocks with their base addresses, registers with their absolute
addresses and fields with their bus relative bit positions.

Keys:
  enter       - Expand or collapse the selected node
  up/down     - Move the selection
  q, ESC      - Exit`,
	Args: cobra.ExactArgs(1),
	Run:  runBrowse,
}

func init() {
	RootCmd.AddCommand(browseCmd)
	browseCmd.Flags().IntVar(&browseBusWidth, "bus-width", 32, "width in bits of the addressing bus")
}

func runBrowse(cmd *cobra.Command, args []string) {
	component, err := ipxact.LoadFile(args[0])
	if err != nil {
		colorError.Fprintf(os.Stderr, "Error loading document: %v\n", err)
		os.Exit(1)
	}

	root := tview.NewTreeNode(fmt.Sprintf("%v (%v %v)", component.Name, component.Vendor, component.Version)).
		SetColor(tcell.ColorYellow)

	for _, m := range component.MemoryMaps {
		root.AddChild(memoryMapNode(m))
	}

	tree := tview.NewTreeView().
		SetRoot(root).
		SetCurrentNode(root)

	app := tview.NewApplication()

	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})
	tree.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.SetRoot(tree, true).Run(); err != nil {
		colorError.Fprintf(os.Stderr, "Error running browser: %v\n", err)
		os.Exit(2)
	}
}

func memoryMapNode(m *ipxact.MemoryMap) *tview.TreeNode {
	node := tview.NewTreeNode("map " + m.Name).
		SetColor(tcell.ColorGreen).
		SetExpanded(true)

	for _, block := range m.AddressBlocks {
		node.AddChild(addressBlockNode(block))
	}
	return node
}

func addressBlockNode(block *ipxact.AddressBlock) *tview.TreeNode {
	node := tview.NewTreeNode(fmt.Sprintf("%v @ 0x%04X (%v bytes)",
		block.Name, uint64(block.BaseAddress), uint64(block.Range))).
		SetColor(tcell.ColorAqua).
		SetExpanded(false)

	for _, reg := range block.Registers {
		node.AddChild(registerNode(block, reg))
	}
	return node
}

func registerNode(block *ipxact.AddressBlock, reg *ipxact.Register) *tview.TreeNode {
	node := tview.NewTreeNode(fmt.Sprintf("%v @ 0x%04X",
		reg.Name, uint64(reg.AddressOffset+block.BaseAddress))).
		SetColor(tcell.ColorWhite).
		SetExpanded(false)

	for _, f := range reg.Fields {
		node.AddChild(fieldNode(reg, f))
	}
	return node
}

func fieldNode(reg *ipxact.Register, f *ipxact.Field) *tview.TreeNode {
	shift := (int(reg.AddressOffset) * utils.BitsPerByte) % browseBusWidth
	low := int(f.BitOffset) + shift
	high := low + int(f.BitWidth) - 1

	position := fmt.Sprintf("[%v]", low)
	if high != low {
		position = fmt.Sprintf("[%v:%v]", high, low)
	}

	node := tview.NewTreeNode(fmt.Sprintf("%v %v", f.Name, position)).
		SetColor(tcell.ColorSilver).
		SetExpanded(false)

	if value, bound := f.ResetValue(); bound {
		node.AddChild(tview.NewTreeNode(fmt.Sprintf("reset = 0x%X", value)).
			SetColor(tcell.ColorGray))
	}
	for _, set := range f.EnumeratedValueSets {
		for _, e := range set.Values {
			node.AddChild(tview.NewTreeNode(fmt.Sprintf("%v = %v", e.Name, uint64(e.Value))).
				SetColor(tcell.ColorGray))
		}
	}
	return node
}
