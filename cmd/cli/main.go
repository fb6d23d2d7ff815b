package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "seed":
		seed()
	case "health":
		health()
	case "customers":
		handleList("customers", args, listCustomers)
	case "vendors":
		handleList("vendors", args, listVendors)
	case "appointments":
		handleAppointments(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: workshop auth <login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleList(name string, args []string, list func()) {
	if len(args) < 1 || args[0] != "list" {
		fmt.Printf("Usage: workshop %s list\n", name)
		return
	}
	list()
}

func handleAppointments(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: workshop appointments <list|confirm|cancel|complete> [id]")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listAppointments()
	case "confirm":
		transition(args[1:], "CONFIRMED")
	case "cancel":
		transition(args[1:], "CANCELLED")
	case "complete":
		transition(args[1:], "COMPLETED")
	default:
		fmt.Printf("unknown appointments command: %s\n", subCmd)
	}
}

// Auth commands
func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	resp, err := call(http.MethodPost, "/auth/login", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ Login failed: %v\n", result["error"])
		return
	}
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			if err := saveSession(c.Value); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
		}
	}
	fmt.Printf("✓ Logged in as: %s\n", *email)
}

func logoutUser() {
	if resp, err := call(http.MethodPost, "/auth/logout", nil); err == nil {
		resp.Body.Close()
	}
	os.Remove(sessionFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	var result struct {
		User *struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := getJSON("/auth/session", &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if result.User == nil {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ %s <%s> (%s)\n", result.User.Name, result.User.Email, result.User.Role)
}

// Administrative commands
func seed() {
	var result map[string]interface{}
	if err := getJSON("/seed", &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%v: %v\n", result["status"], result["message"])
}

func health() {
	var result map[string]interface{}
	if err := getJSON("/health", &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

// Listings
func listCustomers() {
	var rows []map[string]interface{}
	if err := getData("/customers", &rows); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCUSTOMER\tNAME\tPHONE\tVEHICLES")
	for _, c := range rows {
		vehicles, _ := c["vehicles"].([]interface{})
		fmt.Fprintf(w, "%v\t%v\t%v %v\t%v\t%d\n", c["id"], c["customerId"], c["firstName"], c["lastName"], c["phone"], len(vehicles))
	}
	w.Flush()
}

func listVendors() {
	var rows []map[string]interface{}
	if err := getData("/vendors", &rows); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVENDOR\tCOMPANY\tRATING\tSTATUS")
	for _, v := range rows {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", v["id"], v["vendorId"], v["companyName"], v["rating"], v["status"])
	}
	w.Flush()
}

func listAppointments() {
	var rows []map[string]interface{}
	if err := getData("/appointments", &rows); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSERVICE\tSTATUS\tVEHICLE")
	for _, a := range rows {
		reg := ""
		if v, ok := a["vehicle"].(map[string]interface{}); ok {
			reg = fmt.Sprint(v["regNumber"])
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%s\n", a["id"], a["date"], a["serviceType"], a["status"], reg)
	}
	w.Flush()
}

func transition(args []string, status string) {
	if len(args) < 1 {
		fmt.Printf("Usage: workshop appointments %s <id>\n", strings.ToLower(status))
		return
	}
	resp, err := call(http.MethodPatch, "/appointments/"+args[0]+"/status", map[string]string{"status": status})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ %v\n", result["error"])
		return
	}
	fmt.Printf("✓ Appointment %s -> %s\n", args[0], status)
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("WORKSHOP_API"); url != "" {
		return strings.TrimSuffix(url, "/")
	}
	return "http://localhost:8080/api"
}

func call(method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, getAPIURL()+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := loadSession(); token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	return http.DefaultClient.Do(req)
}

func getJSON(path string, dst interface{}) error {
	resp, err := call(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("not logged in (run: workshop auth login)")
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func getData(path string, dst interface{}) error {
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := getJSON(path, &envelope); err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%s", envelope.Error)
	}
	return json.Unmarshal(envelope.Data, dst)
}

func sessionFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".workshop", "session")
}

func saveSession(token string) error {
	if err := os.MkdirAll(filepath.Dir(sessionFile()), 0700); err != nil {
		return err
	}
	return os.WriteFile(sessionFile(), []byte(token), 0600)
}

func loadSession() string {
	data, _ := os.ReadFile(sessionFile())
	return strings.TrimSpace(string(data))
}

func printUsage() {
	fmt.Print(`Workshop CLI

Usage:
  workshop <command> [options]

Commands:
  auth          Session management (login, logout, who)
  seed          Create the admin and demo user accounts
  health        Show database health
  customers     Customer operations (list)
  vendors       Vendor operations (list)
  appointments  Appointment operations (list, confirm, cancel, complete) - admin access required for changes
  help          Show this help message

Environment Variables:
  WORKSHOP_API    API endpoint (default: http://localhost:8080/api)

Examples:
  workshop seed
  workshop auth login -email admin@meghcomm.store -password admin123456
  workshop customers list
  workshop appointments confirm 2
`)
}
