package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"

	"github.com/char5742/clickpad-gestures/internal/api"
	"github.com/char5742/clickpad-gestures/internal/config"
	"github.com/char5742/clickpad-gestures/internal/ingest"
)

func main() {
	// コマンドライン引数の解析
	useApi := flag.Bool("api", false, "APIサーバーモードで起動します")
	configPath := flag.String("config", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	devicePath := flag.String("device", "", "入力デバイスのパス (指定しない場合は自動検出)")
	port := flag.Int("port", 8080, "APIサーバーのポート番号")
	openBrowser := flag.Bool("open", false, "APIサーバーの起動後にブラウザで開きます")
	dryRun := flag.Bool("dry-run", false, "仮想ポインタを作らず出力をログに書きます")
	list := flag.Bool("list", false, "プロパティの一覧を表示して終了します")
	listDevices := flag.Bool("devices", false, "タッチパッドの一覧を表示して終了します")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "使い方: %s [オプション] [Name=Value ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// 設定ファイルパスの決定
	cfgPath := config.DefaultConfigPath()
	if *configPath != "" {
		cfgPath = *configPath
	}

	// 設定ファイルの読み込み
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Printf("設定ファイルの読み込みに失敗しました: %v\nデフォルト設定を使用します\n", err)
		cfg = config.DefaultConfig()
	} else {
		fmt.Printf("設定ファイルを読み込みました: %s\n", cfgPath)
	}

	// Name=Value 形式の引数は適用して保存する
	if flag.NArg() > 0 {
		cfg, err = applyAssignments(cfg, flag.Args())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := config.SaveConfig(cfgPath, cfg); err != nil {
			log.Fatalf("設定の保存に失敗しました: %v", err)
		}
		fmt.Printf("設定を保存しました: %s\n", cfgPath)
	}

	if *list {
		printProperties(cfg)
		return
	}
	if *listDevices {
		printDevices()
		return
	}

	withDevice := func(c *config.Config) *config.Config {
		if *devicePath == "" {
			return c
		}
		c = c.Clone()
		c.Device.Path = *devicePath
		return c
	}
	cfg = withDevice(cfg)

	if !*dryRun && os.Geteuid() != 0 {
		log.Println("警告: ルート権限がないためデバイスを開けない可能性があります")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	newService := func(c *config.Config) api.Service {
		return api.NewGestureService(c, *dryRun)
	}

	// APIモードかCLIモードかを判断
	if *useApi {
		fmt.Printf("APIサーバーモードで起動します (ポート: %d)...\n", *port)
		server := api.NewServer(cfg, cfgPath, *port, newService)
		watch(cfgPath, func(c *config.Config) { server.UpdateConfig(withDevice(c)) })
		runApiServer(ctx, server, *port, *openBrowser)
	} else {
		fmt.Println("CLIモードで起動します...")
		service := api.NewGestureService(cfg, *dryRun)
		watch(cfgPath, func(c *config.Config) { service.UpdateConfig(withDevice(c)) })
		runCLI(ctx, service)
	}
}

func applyAssignments(cfg *config.Config, args []string) (*config.Config, error) {
	for _, arg := range args {
		name, value, err := config.ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		cfg, err = cfg.SetProperty(name, value)
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func printProperties(cfg *config.Config) {
	for _, p := range cfg.Properties() {
		fmt.Printf("    %-26s = %s\n", p.Name, p.Value)
	}
}

func printDevices() {
	devices, err := ingest.ScanTouchpads()
	if err != nil {
		log.Fatalf("デバイス一覧の取得に失敗しました: %v", err)
	}
	if len(devices) == 0 {
		fmt.Println(ingest.ErrNoTouchpad)
		return
	}
	for _, d := range devices {
		fmt.Printf("%s\t%s\tX=%d..%d Y=%d..%d\n",
			d.Path, d.Name, d.Axes.MinX, d.Axes.MaxX, d.Axes.MinY, d.Axes.MaxY)
	}
}

// watch は設定ファイルの変更を監視する。監視できなくても動作は続ける
func watch(cfgPath string, onReload config.ReloadCallback) {
	watcher, err := config.NewWatcher(cfgPath, onReload)
	if err != nil {
		log.Printf("設定ファイルの監視を開始できませんでした: %v", err)
		return
	}
	watcher.Start()
}

// APIサーバーモードでの実行
func runApiServer(ctx context.Context, server *api.Server, port int, openBrowser bool) {
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	if openBrowser {
		url := fmt.Sprintf("http://localhost:%d/api/properties", port)
		if err := browser.OpenURL(url); err != nil {
			log.Printf("ブラウザを開けませんでした: %v", err)
		}
	}

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("APIサーバーの起動に失敗しました: %v", err)
		}
	case <-ctx.Done():
		fmt.Println("シャットダウンします...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.Printf("APIサーバーの停止に失敗しました: %v", err)
		}
	}
}

// CLIモードでの実行
func runCLI(ctx context.Context, service *api.GestureService) {
	if err := service.Start(); err != nil {
		fmt.Printf("ジェスチャー認識サービスの起動に失敗しました: %v\n", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		fmt.Println("シャットダウンします...")
		if err := service.Stop(); err != nil {
			log.Printf("サービスの停止に失敗しました: %v", err)
		}
	case <-service.Done():
		if err := service.Err(); err != nil {
			log.Fatalf("ジェスチャー認識サービスが終了しました: %v", err)
		}
	}
}
