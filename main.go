package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.tapedeck.app/tapedeck/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	})))
	slog.Info("starting app", "version", version, "commit", commit, "date", date)

	svc := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Tapedeck",
		Description: "Desktop audio recorder",
		Services: []application.Service{
			application.NewService(svc),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	// Create main window
	mainWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:  "Tapedeck",
		Width:  960,
		Height: 640,
		URL:    "/",
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
	})

	// Intercept window close: hide instead of destroy so tray can reopen
	mainWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel() // Prevent actual close
		mainWindow.Hide()
	})

	// Initialize service with app and window references
	svc.Init(wailsApp, mainWindow)

	// Setup system tray
	systemTray := wailsApp.SystemTray.New()

	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Show Window").OnClick(func(ctx *application.Context) {
		mainWindow.Show()
		mainWindow.Focus()
	})
	trayMenu.Add("Toggle Recording").
		SetAccelerator("CmdOrCtrl+Shift+R").
		OnClick(func(ctx *application.Context) {
			go func() {
				if _, err := svc.ToggleRecording(); err != nil {
					slog.Error("toggle recording from tray", "error", err)
				}
			}()
		})

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			svc.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	// Run application
	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
