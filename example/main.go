// A telebot echo bot running against an in-process telemock instance.
// No real Telegram account is involved: the emulator plays the API side
// and a synthetic user talks to the bot.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/maxbolgarin/contem"
	"github.com/telemock/telemock"
	tele "gopkg.in/telebot.v4"
)

func main() {
	ctx := contem.New()
	defer ctx.Shutdown()

	mock, err := telemock.New()
	if err != nil {
		panic(err)
	}
	if err := mock.Start(ctx); err != nil {
		panic(err)
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:    "http://" + mock.Config().Listen,
		Token:  "mock-token",
		Poller: &tele.LongPoller{Timeout: time.Second},
	})
	if err != nil {
		panic(err)
	}

	bot.Handle(tele.OnText, func(c tele.Context) error {
		return c.Send("echo: " + c.Text())
	})
	go bot.Start()
	defer bot.Stop()

	mock.SendUserMessage("hello")
	mock.SendUserMessage("world")

	// Give the long poller a moment to pick both messages up.
	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for len(mock.History()) < 4 && waitCtx.Err() == nil {
		time.Sleep(50 * time.Millisecond)
	}

	for _, e := range mock.History() {
		fmt.Printf("%-8s %s\n", e.Direction, e.Message.Text)
	}
}
