package cmd

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"academic-records/internal/api/tcp"

	"github.com/spf13/cobra"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	Addr              string
	Clients           int
	StudentsPerClient int
	BaseRA            int
	SharedRA          int
	Login             string
	Password          string
}

// LoadTestResult holds the results of load testing
type LoadTestResult struct {
	TotalRequests     int
	SuccessfulReqs    int
	DuplicateReqs     int
	FailedReqs        int
	SharedSuccesses   int
	AvgResponseTimeMs float64
	MaxResponseTimeMs int64
	MinResponseTimeMs int64
	ThroughputRPS     float64
	ErrorsByType      map[string]int
}

// LoadTester drives concurrent TCP clients inserting students
type LoadTester struct {
	config    LoadTestConfig
	results   LoadTestResult
	mutex     sync.Mutex
	startTime time.Time
}

// NewLoadTester creates a new load tester
func NewLoadTester(config LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		results: LoadTestResult{
			ErrorsByType: make(map[string]int),
		},
	}
}

// lineClient speaks the command protocol over one connection.
type lineClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dialClient(addr string) (*lineClient, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	c := &lineClient{conn: conn, r: bufio.NewReader(conn)}

	greeting, err := c.readLine()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if greeting != tcp.Greeting {
		conn.Close()
		return nil, fmt.Errorf("unexpected greeting %q", greeting)
	}
	return c, nil
}

func (c *lineClient) readLine() (string, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	line, err := c.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (c *lineClient) call(command string) (string, error) {
	if _, err := fmt.Fprintf(c.conn, "%s\n", command); err != nil {
		return "", err
	}
	return c.readLine()
}

// callList sends a list command and returns its rows.
func (c *lineClient) callList(command string) ([]string, error) {
	status, err := c.call(command)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(status, "OK:") {
		return nil, fmt.Errorf("%s", status)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(status, "OK:"))
	if err != nil {
		return nil, fmt.Errorf("bad list header %q", status)
	}
	rows := make([]string, 0, n)
	for i := 0; i < n; i++ {
		row, err := c.readLine()
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *lineClient) close() {
	_, _ = fmt.Fprintf(c.conn, "SAIR\n")
	c.conn.Close()
}

func (lt *LoadTester) login(c *lineClient) error {
	if lt.config.Login == "" {
		return nil
	}
	reply, err := c.call("LOGIN:" + lt.config.Login + "," + lt.config.Password)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "OK:") {
		return fmt.Errorf("login failed: %s", reply)
	}
	return nil
}

// RunLoadTest executes the load test
func (lt *LoadTester) RunLoadTest() {
	fmt.Printf("Starting load test with %d concurrent clients...\n", lt.config.Clients)

	lt.startTime = time.Now()
	var wg sync.WaitGroup

	for i := 0; i < lt.config.Clients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			lt.simulateClient(clientID)
		}(i)
	}

	wg.Wait()

	lt.calculateMetrics()
	lt.printResults()
	lt.verifyNoDuplicates()
}

// simulateClient inserts a block of distinct students and then races the
// other clients for the shared RA.
func (lt *LoadTester) simulateClient(clientID int) {
	c, err := dialClient(lt.config.Addr)
	if err != nil {
		lt.recordError("connect")
		return
	}
	defer c.close()

	if err := lt.login(c); err != nil {
		lt.recordError("login")
		return
	}

	for i := 0; i < lt.config.StudentsPerClient; i++ {
		ra := lt.config.BaseRA + clientID*lt.config.StudentsPerClient + i
		lt.insert(c, ra, false)
	}
	lt.insert(c, lt.config.SharedRA, true)
}

func (lt *LoadTester) insert(c *lineClient, ra int, shared bool) {
	start := time.Now()
	reply, err := c.call(fmt.Sprintf("CADASTRAR_ALUNO:%d,Aluno %d,aluno%d@teste.br", ra, ra, ra))
	if err != nil {
		lt.recordError("io")
		return
	}
	lt.recordResponse(reply, time.Since(start), shared)
}

// recordResponse records the response metrics
func (lt *LoadTester) recordResponse(reply string, responseTime time.Duration, shared bool) {
	lt.mutex.Lock()
	defer lt.mutex.Unlock()

	lt.results.TotalRequests++
	responseTimeMs := responseTime.Milliseconds()

	if lt.results.MaxResponseTimeMs < responseTimeMs {
		lt.results.MaxResponseTimeMs = responseTimeMs
	}
	if lt.results.MinResponseTimeMs == 0 || lt.results.MinResponseTimeMs > responseTimeMs {
		lt.results.MinResponseTimeMs = responseTimeMs
	}

	// Calculate running average
	currentAvg := lt.results.AvgResponseTimeMs
	currentCount := float64(lt.results.TotalRequests)
	lt.results.AvgResponseTimeMs = (currentAvg*(currentCount-1) + float64(responseTimeMs)) / currentCount

	switch {
	case strings.HasPrefix(reply, "OK"):
		lt.results.SuccessfulReqs++
		if shared {
			lt.results.SharedSuccesses++
		}
	case strings.HasPrefix(reply, "ERRO:DUPLICATE_KEY:"):
		lt.results.DuplicateReqs++
	default:
		lt.results.FailedReqs++
		lt.results.ErrorsByType[errorCode(reply)]++
	}
}

func errorCode(reply string) string {
	parts := strings.SplitN(reply, ":", 3)
	if len(parts) >= 2 && parts[0] == "ERRO" {
		return parts[1]
	}
	return "unexpected_reply"
}

// recordError records an error that occurred during testing
func (lt *LoadTester) recordError(errorType string) {
	lt.mutex.Lock()
	defer lt.mutex.Unlock()

	lt.results.TotalRequests++
	lt.results.FailedReqs++
	lt.results.ErrorsByType[errorType]++
}

// calculateMetrics calculates final test metrics
func (lt *LoadTester) calculateMetrics() {
	totalDuration := time.Since(lt.startTime)
	lt.results.ThroughputRPS = float64(lt.results.TotalRequests) / totalDuration.Seconds()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// printResults displays the load test results
func (lt *LoadTester) printResults() {
	r := lt.results
	fmt.Println("\n" + strings.Repeat("=", 80))

	fmt.Printf("Test Configuration:\n")
	fmt.Printf("  - Server: %s\n", lt.config.Addr)
	fmt.Printf("  - Concurrent Clients: %d\n", lt.config.Clients)
	fmt.Printf("  - Students per Client: %d\n", lt.config.StudentsPerClient)
	fmt.Printf("  - Contended RA: %d\n", lt.config.SharedRA)

	fmt.Printf("\nOverall Performance:\n")
	fmt.Printf("  - Total Requests: %d\n", r.TotalRequests)
	fmt.Printf("  - Successful: %d (%.2f%%)\n", r.SuccessfulReqs, percent(r.SuccessfulReqs, r.TotalRequests))
	fmt.Printf("  - Duplicates: %d (%.2f%%)\n", r.DuplicateReqs, percent(r.DuplicateReqs, r.TotalRequests))
	fmt.Printf("  - Failed: %d (%.2f%%)\n", r.FailedReqs, percent(r.FailedReqs, r.TotalRequests))

	fmt.Printf("\nResponse Time Metrics:\n")
	fmt.Printf("  - Average: %.2f ms\n", r.AvgResponseTimeMs)
	fmt.Printf("  - Minimum: %d ms\n", r.MinResponseTimeMs)
	fmt.Printf("  - Maximum: %d ms\n", r.MaxResponseTimeMs)

	fmt.Printf("\nThroughput:\n")
	fmt.Printf("  - Requests per Second: %.2f\n", r.ThroughputRPS)

	if len(r.ErrorsByType) > 0 {
		fmt.Printf("\nError Breakdown:\n")
		for errorType, count := range r.ErrorsByType {
			fmt.Printf("  - %s: %d\n", errorType, count)
		}
	}

	fmt.Printf("\nContention Analysis:\n")
	if r.SharedSuccesses == 1 {
		fmt.Printf("  ✅ Contended RA inserted exactly once\n")
	} else {
		fmt.Printf("  ❌ Contended RA inserted %d times\n", r.SharedSuccesses)
	}
}

// verifyNoDuplicates lists the students and checks every RA appears once.
func (lt *LoadTester) verifyNoDuplicates() {
	c, err := dialClient(lt.config.Addr)
	if err != nil {
		fmt.Printf("  ❌ Could not connect for verification: %v\n", err)
		return
	}
	defer c.close()

	if err := lt.login(c); err != nil {
		fmt.Printf("  ❌ Could not log in for verification: %v\n", err)
		return
	}

	rows, err := c.callList("LISTAR_ALUNOS")
	if err != nil {
		fmt.Printf("  ❌ Could not list students: %v\n", err)
		return
	}

	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		ra, _, _ := strings.Cut(row, ",")
		seen[ra]++
	}
	dupes := 0
	for ra, n := range seen {
		if n > 1 {
			dupes++
			fmt.Printf("  ❌ RA %s stored %d times\n", ra, n)
		}
	}
	if dupes == 0 {
		fmt.Printf("  ✅ %d students listed, no duplicate RA\n", len(rows))
	}
}

// loadtestCmd represents the loadtest command
var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Run concurrent insert tests against the command server",
	Long: `Open many TCP clients at once against a running server.
Each client inserts its own block of students and then every client tries
to insert the same RA. The run reports throughput, latency and whether the
contended RA ended up stored exactly once.`,
	Run: func(cmd *cobra.Command, args []string) {
		runLoadTest()
	},
}

var (
	loadAddr     string
	loadClients  int
	loadPerUser  int
	loadBaseRA   int
	loadSharedRA int
	loadLogin    string
	loadPassword string
)

func init() {
	rootCmd.AddCommand(loadtestCmd)

	loadtestCmd.Flags().StringVar(&loadAddr, "addr", "localhost:5000", "address of the command server")
	loadtestCmd.Flags().IntVar(&loadClients, "clients", 10, "number of concurrent clients")
	loadtestCmd.Flags().IntVar(&loadPerUser, "students", 20, "distinct students inserted per client")
	loadtestCmd.Flags().IntVar(&loadBaseRA, "base-ra", 100000, "first RA used by the test")
	loadtestCmd.Flags().IntVar(&loadSharedRA, "shared-ra", 99999, "RA every client tries to insert")
	loadtestCmd.Flags().StringVar(&loadLogin, "login", "admin", "login used by every client (empty to skip)")
	loadtestCmd.Flags().StringVar(&loadPassword, "password", "admin123", "password for --login")
}

func runLoadTest() {
	if loadClients < 1 || loadPerUser < 0 {
		fmt.Fprintln(os.Stderr, "clients must be positive and students non-negative")
		os.Exit(1)
	}

	loadTester := NewLoadTester(LoadTestConfig{
		Addr:              loadAddr,
		Clients:           loadClients,
		StudentsPerClient: loadPerUser,
		BaseRA:            loadBaseRA,
		SharedRA:          loadSharedRA,
		Login:             loadLogin,
		Password:          loadPassword,
	})

	fmt.Println("Academic Records Load Test")
	fmt.Println("==========================")
	loadTester.RunLoadTest()
}
