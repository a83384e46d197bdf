package main // Command bookctl is a terminal front end for the booking platform.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-client/internal/api"
	"github.com/iliyamo/cinema-booking-client/internal/auth"
	"github.com/iliyamo/cinema-booking-client/internal/booking"
	"github.com/iliyamo/cinema-booking-client/internal/catalog"
	"github.com/iliyamo/cinema-booking-client/internal/config"
	"github.com/iliyamo/cinema-booking-client/internal/model"
	"github.com/iliyamo/cinema-booking-client/internal/realtime"
	"github.com/iliyamo/cinema-booking-client/internal/session"
	"github.com/iliyamo/cinema-booking-client/internal/store"
)

const usage = `usage: bookctl <command> [args]

  login <email> <password>        sign in and persist the session
  logout                          revoke and clear the session
  movies                          list currently screening movies
  showtimes <movieId>             list showtimes for a movie
  watch <showtimeId>              follow the live seat map (Ctrl-C to leave)
  book <showtimeId> <seats>       hold seats (comma-separated) and open payment
  confirm <bookingId> <txnId> <method>  confirm a settled payment
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	log := zl.Sugar()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	sess := session.New(openStore(cfg))
	nav := api.BrowserNavigator{}
	client := api.New(cfg, sess, nav, log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], cfg, sess, client, nav, log); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, cmd string, args []string, cfg config.Config, sess *session.Session, client *api.Client, nav api.Navigator, log *zap.SugaredLogger) error {
	switch cmd {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("expected <email> <password>")
		}
		u, err := auth.New(client, sess).Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", u.Email, u.Role)
		return nil

	case "logout":
		return auth.New(client, sess).Logout(ctx)

	case "movies":
		movies, err := catalog.New(client).Movies(ctx)
		if err != nil {
			return err
		}
		for _, m := range movies {
			fmt.Printf("%-12s %s (%dm, %s)\n", m.ID, m.Title, m.Duration, m.Rating)
		}
		return nil

	case "showtimes":
		if len(args) != 1 {
			return fmt.Errorf("expected <movieId>")
		}
		showtimes, err := catalog.New(client).Showtimes(ctx, args[0])
		if err != nil {
			return err
		}
		for _, st := range showtimes {
			fmt.Printf("%-12s %s %s/%s\n", st.ID, st.StartsAt.Format("2006-01-02 15:04"), st.Cinema, st.Hall)
		}
		return nil

	case "watch":
		if len(args) != 1 {
			return fmt.Errorf("expected <showtimeId>")
		}
		return watch(ctx, args[0], cfg, sess, catalog.New(client), log)

	case "book":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("expected <showtimeId> <seats> [method]")
		}
		method := ""
		if len(args) == 3 {
			method = args[2]
		}
		flow := booking.NewFlow(client, nav, nil, log)
		b, err := flow.HoldSeats(ctx, args[0], strings.Split(args[1], ","))
		if err != nil {
			return err
		}
		p, err := flow.CreatePayment(ctx, b.ID, b.Amount, method)
		if err != nil {
			return err
		}
		fmt.Printf("after paying, run: bookctl confirm %s <transactionId> %s\n", b.ID, p.Method)
		return nil

	case "confirm":
		if len(args) != 3 {
			return fmt.Errorf("expected <bookingId> <txnId> <method>")
		}
		_, err := booking.NewFlow(client, nav, nil, log).ConfirmBooking(ctx, args[0], args[1], args[2])
		return err

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// watch follows the live seat map until interrupted, then leaves the room.
func watch(ctx context.Context, showtimeID string, cfg config.Config, sess *session.Session, cat *catalog.Service, log *zap.SugaredLogger) error {
	var transport realtime.Transport
	if cfg.AMQPURL != "" {
		transport = realtime.NewAMQPTransport(cfg.AMQPURL, showtimeID, log)
	} else {
		// Prefer the push socket; degrade to REST polling when it gives up.
		transport = realtime.NewFallbackTransport(
			realtime.NewWebSocketTransport(cfg.SocketBaseURL, "/showtimes", log),
			realtime.NewPollingTransport(showtimeID, cat, 0, log),
			log,
		)
	}

	ch := realtime.NewChannel(showtimeID, sess.UserID(), transport, cat, log)
	ch.OnUpdate(func(s *model.SeatSnapshot) {
		fmt.Printf("seats: %d free, booked=%v locked=%v\n", s.AvailableSeats, s.BookedSeats, s.LockedSeats)
	})
	if err := ch.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return ch.Close()
}

// openStore picks the session store: shared Redis when configured and
// reachable, else the per-user session file.
func openStore(cfg config.Config) store.Store {
	if cfg.RedisAddr != "" {
		if client := store.DialRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); client != nil {
			return store.NewRedisStore(client, "")
		}
	}
	return store.NewFileStore(store.DefaultSessionPath())
}
