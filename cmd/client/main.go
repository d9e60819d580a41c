package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/castillofj/touchline/pkg/client"
	"github.com/castillofj/touchline/pkg/config"
	"github.com/castillofj/touchline/pkg/logging"
	"github.com/castillofj/touchline/pkg/messages"
	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	roomFlag := flag.String("room", "", "room ID or slug to join; empty creates a new room")
	nameFlag := flag.String("name", "coach", "display name for this session")
	demoFlag := flag.Bool("demo", false, "simulate a continuous drag of the home goalkeeper")
	flag.Parse()

	_ = godotenv.Load()
	logging.Init()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewAPIClient(cfg.BaseURL)

	var room *board.Room
	if *roomFlag == "" {
		room, err = api.CreateRoom(ctx, client.CreateRoomRequest{})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create room")
		}
		log.Info().Str("room_id", room.RoomID).Str("slug", room.Slug).Msg("created room")
	} else {
		room, err = api.GetRoom(ctx, *roomFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch room")
		}
		log.Info().Str("room_id", room.RoomID).Str("slug", room.Slug).Msg("joined room")
	}

	user := board.LocalUser{ID: ulid.Make().String(), Name: *nameFlag}
	local := board.NewLocalState()
	local.SetCurrentUser(user)

	store := board.NewStore()
	store.ApplySnapshot(room)

	router := client.NewRouter(store)
	channel := client.NewChannel(client.NewChannelOptions{
		WSBaseURL: cfg.WSBaseURL(),
		Router:    router,
		OnStateChange: func(state client.ConnState) {
			local.SetConnected(state == client.StateConnected)
			log.Info().Str("state", state.String()).Msg("connection state changed")
		},
	})

	unsubscribe := channel.Subscribe(func(msg *messages.Message) {
		switch msg.Type {
		case messages.MessageTypePlayerMoved:
			log.Debug().Str("player_id", msg.Player.PlayerID).Float64("x", msg.Player.X).Float64("y", msg.Player.Y).Msg("player moved")
		case messages.MessageTypeMatchStatus:
			log.Info().Str("status", string(msg.Status)).Msg("match status changed")
		case messages.MessageTypeUserLeft:
			log.Info().Str("client_id", msg.ClientID).Msg("user left")
		}
	})
	defer unsubscribe()

	channel.Connect(ctx, room.RoomID, user.ID)
	defer channel.Close()

	if *demoFlag {
		go runDragDemo(ctx, store, channel, local)
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

// runDragDemo drags the home goalkeeper in a slow circle, applying each
// position optimistically before handing it to the throttled emitter.
func runDragDemo(ctx context.Context, store *board.Store, channel *client.Channel, local *board.LocalState) {
	emitter := client.NewEmitter(client.NewEmitterOptions{Sender: channel})

	room := store.Room()
	if room == nil || len(room.Teams) == 0 || len(room.Teams[0].Players) == 0 {
		log.Warn().Msg("no player to drag")
		return
	}
	player := room.Teams[0].Players[0]
	local.SetSelection(player.PlayerID)
	local.SetDragging(true)
	defer local.SetDragging(false)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := time.Since(start).Seconds()
			player.X = 0.5 + 0.2*math.Cos(t)
			player.Y = 0.5 + 0.2*math.Sin(t)
			// Local view first, network second.
			store.ApplyPlayerUpdate(player)
			emitter.SendThrottled(player.PlayerID, messages.NewPlayerMoved(player))
		}
	}
}
