package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var undoSteps int

var replaceCmd = &cobra.Command{
	Use:   "replace <page> <locator> <html>",
	Short: "Replace the element matching a CSS locator with new markup",
	Args:  cobra.ExactArgs(3),
	RunE:  runReplace,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <page> <locator>",
	Short: "Delete the element matching a CSS locator",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

var undoCmd = &cobra.Command{
	Use:   "undo <page>",
	Short: "Undo the latest edits saved in a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runUndo,
}

var historyCmd = &cobra.Command{
	Use:   "history <page>",
	Short: "Print the edit history saved in a page, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	undoCmd.Flags().IntVarP(&undoSteps, "steps", "n", 1, "Number of edits to undo")
}

func runReplace(cmd *cobra.Command, args []string) error {
	p, err := openPage(cmd, args[0])
	if err != nil {
		return err
	}
	if err := p.focus(args[1]); err != nil {
		return err
	}
	if _, err := p.mm.ReplaceFocusedElement(args[2]); err != nil {
		return err
	}
	return p.save()
}

func runDelete(cmd *cobra.Command, args []string) error {
	p, err := openPage(cmd, args[0])
	if err != nil {
		return err
	}
	if err := p.focus(args[1]); err != nil {
		return err
	}
	if err := p.mm.DeleteFocusedElement(); err != nil {
		return err
	}
	return p.save()
}

// The redo stack is not saved with the page, so there is no redo command:
// undone edits are gone once the page is written.
func runUndo(cmd *cobra.Command, args []string) error {
	if undoSteps < 1 {
		return errors.New("--steps must be at least 1")
	}
	p, err := openPage(cmd, args[0])
	if err != nil {
		return err
	}
	for i := 0; i < undoSteps; i++ {
		if err := p.mm.Undo(); err != nil {
			return err
		}
	}
	logger.Debug("undone", zap.Int("left", p.mm.History().UndoDepth()))
	return p.save()
}

func runHistory(cmd *cobra.Command, args []string) error {
	p, err := openPage(cmd, args[0])
	if err != nil {
		return err
	}
	records, err := p.mm.History().Serialize()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, rec := range records {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i+1, rec.Name, rec.Locator, rec.SnapshotHTML)
	}
	return nil
}
