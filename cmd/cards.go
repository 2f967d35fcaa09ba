package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/review"
	"github.com/desertthunder/ankix/internal/shared"
)

// CardsShow prints a deck's cards in the requested format.
func (r *Runner) CardsShow(ctx context.Context, cmd *cli.Command) error {
	coll, err := r.loadDeck(ctx, cmd)
	if err != nil {
		return err
	}

	data, err := formatter.FormatCards(cmd.String("format"), coll.Deck(), coll.Cards())
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// CardsEdit replaces the question and/or answer of one card and saves the deck.
func (r *Runner) CardsEdit(ctx context.Context, cmd *cli.Command) error {
	if !cmd.IsSet("question") && !cmd.IsSet("answer") {
		return fmt.Errorf("%w: --question or --answer is required", shared.ErrMissingArgument)
	}

	coll, err := r.loadDeck(ctx, cmd)
	if err != nil {
		return err
	}

	i := cmd.Int("index") - 1
	card, err := coll.Card(i)
	if err != nil {
		return err
	}
	if cmd.IsSet("question") {
		card.Question = cmd.String("question")
	}
	if cmd.IsSet("answer") {
		card.Answer = cmd.String("answer")
	}

	if err := coll.Update(i, card); err != nil {
		return err
	}
	if err := coll.Persist(ctx); err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}

	r.logger.Info("card updated", "deck", coll.Deck(), "index", i+1)
	return r.writePlain("✓ Updated card %d of %d in %s\n", i+1, coll.Len(), coll.Deck())
}

// CardsDelete removes one card and saves the deck.
func (r *Runner) CardsDelete(ctx context.Context, cmd *cli.Command) error {
	coll, err := r.loadDeck(ctx, cmd)
	if err != nil {
		return err
	}

	i := cmd.Int("index") - 1
	if err := coll.Delete(i); err != nil {
		return err
	}
	if err := coll.Persist(ctx); err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}

	r.logger.Info("card deleted", "deck", coll.Deck(), "index", i+1)
	return r.writePlain("✓ Deleted card %d, %d left in %s\n", i+1, coll.Len(), coll.Deck())
}

func (r *Runner) loadDeck(ctx context.Context, cmd *cli.Command) (*review.Collection, error) {
	deck := cmd.StringArg("deck")
	if deck == "" {
		return nil, fmt.Errorf("%w: deck name is required", shared.ErrMissingArgument)
	}

	coll := review.NewCollection(r.client, deck)
	if err := coll.Load(ctx); err != nil {
		return nil, err
	}
	return coll, nil
}
