package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloudpico-kiosk/internal/alarm"
	"cloudpico-kiosk/internal/buttons"
	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/db"
	"cloudpico-kiosk/internal/display"
	"cloudpico-kiosk/internal/hardware"
	"cloudpico-kiosk/internal/mqtt"
	"cloudpico-kiosk/internal/sensor"
	"cloudpico-kiosk/internal/telemetry"
	"cloudpico-kiosk/internal/weather"
)

const (
	refreshDelay = 500 * time.Millisecond
	buttonDelay  = time.Second
)

// Run wires the kiosk from cfg and blocks until ctx is cancelled. Errors
// returned before the loops start are fatal startup errors.
func Run(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	logger.Info("initializing kiosk",
		"display", cfg.DisplayDriver,
		"starting_screen", cfg.StartingScreen.String(),
		"weather_refresh", cfg.WeatherRefresh,
		"screen_refresh", cfg.ScreenRefresh,
		"sinks", cfg.TelemetrySinks,
	)

	loc, err := resolveLocation(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("location resolved", "locality", loc.Locality, "lat", loc.Latitude, "lon", loc.Longitude)

	hw, err := hardware.Open(hardware.Options{
		Panel:     cfg.DisplayDriver,
		PNGDir:    cfg.DisplayPNGDir,
		UpPin:     cfg.ButtonUpPin,
		DownPin:   cfg.ButtonDownPin,
		BuzzerPin: cfg.BuzzerPin,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logger.Warn("hardware close", "error", err)
		}
	}()

	sinks := openSinks(ctx, cfg, logger)
	defer func() {
		if sinks.sink == nil {
			return
		}
		if err := sinks.sink.Close(); err != nil {
			logger.Warn("telemetry close", "error", err)
		}
	}()

	var samples chan telemetry.Sample
	if sinks.sink != nil {
		samples = make(chan telemetry.Sample, cfg.SensorQueueSize)
	}
	reader := sensor.NewReader(cfg.SensorSampleInterval, samples, logger)
	supervisor := sensor.NewSupervisor(sensor.Options{
		Path: cfg.SensorReaderPath,
		Args: cfg.SensorReaderArgs,
	}, reader.HandleLine, logger)
	hasSensor := supervisor.Available()

	var buzzer alarm.Alarm = alarm.Silent{Logger: logger}
	if hw.Buzzer != nil {
		buzzer = alarm.NewBuzzer(hw.Buzzer, alarm.DefaultOptions(), logger)
	}

	kiosk := NewKiosk(Options{
		WeatherRefresh: cfg.WeatherRefresh,
		ScreenRefresh:  cfg.ScreenRefresh,
		RefreshDelay:   refreshDelay,
		AMPM:           cfg.DisplayAMPM,
		Start:          cfg.StartingScreen,
		HasSensor:      hasSensor,
	}, Deps{
		Model:    weather.NewModel(weather.Units{Celsius: cfg.DisplayCelsius}, loc.Locality, cfg.Timezone),
		Renderer: display.NewRenderer(hw.Panel),
		Fetcher: weather.NewClient(weather.ClientOptions{
			BaseURL: cfg.WeatherBaseURL,
			Token:   cfg.WeatherToken,
			Units:   cfg.WeatherUnits,
			Exclude: cfg.WeatherExclude,
			Timeout: cfg.WeatherTimeout,
		}, loc, logger),
		Alarm:  buzzer,
		Sensor: reader,
		Logger: logger,
	})

	tasks := []Task{{Name: "sensor", Run: supervisor.Run}}

	if hw.Up != nil || hw.Down != nil {
		poller, err := buttons.New(hw.Up, hw.Down, buttons.Options{
			Interval:  cfg.ButtonPollInterval,
			Debounce:  cfg.ButtonDebounce,
			HasSensor: hasSensor,
		}, logger)
		if err != nil {
			return err
		}
		tasks = append(tasks, Task{
			Name:  "buttons",
			Delay: buttonDelay,
			Run:   func(ctx context.Context) error { return poller.Run(ctx, kiosk.HandleButton) },
		})
	}

	if sinks.mqtt != nil {
		tasks = append(tasks, Task{Name: "mqtt", Run: func(ctx context.Context) error {
			if err := sinks.mqtt.Connect(ctx); err != nil && ctx.Err() == nil {
				logger.Error("mqtt connect failed", "error", err)
			}
			return nil
		}})
	}

	if sinks.sink != nil {
		fwd := telemetry.NewForwarder(sinks.sink, cfg.TelemetryGroup, cfg.TelemetryTimeout, logger)
		tasks = append(tasks, Task{
			Name: "telemetry",
			Run:  func(ctx context.Context) error { return fwd.Run(ctx, samples) },
		})
	}

	err = kiosk.Run(ctx, tasks...)
	logger.Info("kiosk shutting down")
	return err
}

func resolveLocation(ctx context.Context, cfg config.Config) (weather.Location, error) {
	if cfg.HasCoordinates {
		return weather.Location{Latitude: cfg.Latitude, Longitude: cfg.Longitude, Locality: cfg.Locality}, nil
	}
	g := weather.NewGeocoder(cfg.GeocodingBaseURL, cfg.GeocodingToken, cfg.WeatherTimeout)
	loc, err := g.Forward(ctx, cfg.LocationQuery, cfg.LocationCountry)
	if err != nil {
		return weather.Location{}, fmt.Errorf("geocode %q: %w", cfg.LocationQuery, err)
	}
	if cfg.Locality != "" {
		loc.Locality = cfg.Locality
	}
	return loc, nil
}

type sinkSet struct {
	sink telemetry.Sink
	mqtt *mqtt.Client
}

// openSinks opens every configured sink. A backend that cannot be reached at
// startup is logged and left out; the kiosk runs without it.
func openSinks(ctx context.Context, cfg config.Config, logger *slog.Logger) sinkSet {
	var (
		set   sinkSet
		multi telemetry.Multi
	)
	for _, name := range cfg.TelemetrySinks {
		s, err := openSink(ctx, name, cfg, logger, &set)
		if err != nil {
			logger.Warn("telemetry sink unavailable", "sink", name, "error", err)
			continue
		}
		multi = append(multi, s)
	}
	switch len(multi) {
	case 0:
	case 1:
		set.sink = multi[0]
	default:
		set.sink = multi
	}
	return set
}

func openSink(ctx context.Context, name string, cfg config.Config, logger *slog.Logger, set *sinkSet) (telemetry.Sink, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.TelemetryTimeout)
	defer cancel()

	switch name {
	case "influx":
		client, err := telemetry.DialInflux(ctx, cfg.InfluxURL, cfg.InfluxToken)
		if err != nil {
			return nil, err
		}
		return telemetry.NewInfluxSink(client, cfg.InfluxOrg), nil
	case "mqtt":
		set.mqtt = mqtt.NewClient(mqtt.Options{
			Broker:   cfg.MQTTBroker,
			Port:     cfg.MQTTPort,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			QoS:      cfg.MQTTQoS,
		}, logger)
		return telemetry.NewMQTTSink(set.mqtt, cfg.MQTTTopicPrefix), nil
	case "sqlite":
		conn, err := db.Open(ctx, db.Options{Path: cfg.SQLitePath, LogSQL: cfg.SQLiteLogSQL}, logger)
		if err != nil {
			return nil, err
		}
		return telemetry.NewSQLiteSink(conn), nil
	case "redis":
		opts := telemetry.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}
		client, err := telemetry.DialRedis(ctx, opts)
		if err != nil {
			return nil, err
		}
		return telemetry.NewRedisSink(client, opts), nil
	case "kafka":
		return telemetry.NewKafkaSink(telemetry.KafkaOptions{
			Brokers:           cfg.KafkaBrokers,
			Partitions:        cfg.KafkaPartitions,
			ReplicationFactor: cfg.KafkaReplication,
		})
	default:
		return nil, fmt.Errorf("unknown sink %q", name)
	}
}
