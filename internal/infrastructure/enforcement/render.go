package enforcement

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"marzhelp/internal/shared/utils/setutil"
)

// renderMemberList renders a set as a deterministic SQL IN list.
func renderMemberList(members *setutil.UintSet) string {
	ids := members.Sorted()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}

func renderHardBlockTriggers(members *setutil.UintSet) []string {
	list := renderMemberList(members)
	insert := fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT ON users
FOR EACH ROW
BEGIN
	IF NEW.admin_id IN (%s) THEN
		SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'Admin panel is disabled';
	END IF;
END`, hardBlockInsertTrigger, list)
	update := fmt.Sprintf(`CREATE TRIGGER %s BEFORE UPDATE ON users
FOR EACH ROW
BEGIN
	IF NEW.admin_id IN (%s) THEN
		SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'Admin panel is disabled';
	END IF;
END`, hardBlockUpdateTrigger, list)
	return []string{insert, update}
}

// renderCapCase renders the per-tenant byte budget lookup used by the
// allocation cap triggers. Entries are ordered by tenant id so the
// installed body is deterministic.
func renderCapCase(caps map[uint]int64) string {
	ids := make([]uint, 0, len(caps))
	for id := range caps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString("CASE NEW.admin_id")
	for _, id := range ids {
		fmt.Fprintf(&b, " WHEN %d THEN %d", id, caps[id])
	}
	b.WriteString(" ELSE NULL END")
	return b.String()
}

func renderTrafficOverageTriggers(caps map[uint]int64) []string {
	capCase := renderCapCase(caps)
	insert := fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT ON users
FOR EACH ROW
BEGIN
	DECLARE max_limit BIGINT DEFAULT NULL;
	DECLARE allocated BIGINT DEFAULT 0;
	SET max_limit = %s;
	IF max_limit IS NOT NULL THEN
		SELECT IFNULL(SUM(IFNULL(data_limit, used_traffic)), 0) INTO allocated
		FROM users WHERE admin_id = NEW.admin_id;
		IF allocated + IFNULL(NEW.data_limit, 0) > max_limit THEN
			SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'Traffic allocation budget exceeded';
		END IF;
	END IF;
END`, trafficOverageInsertTrigger, capCase)
	// Updates that leave data_limit untouched are bookkeeping writes
	// from the panel itself and must pass through.
	update := fmt.Sprintf(`CREATE TRIGGER %s BEFORE UPDATE ON users
FOR EACH ROW
BEGIN
	DECLARE max_limit BIGINT DEFAULT NULL;
	DECLARE allocated BIGINT DEFAULT 0;
	IF NOT (NEW.data_limit <=> OLD.data_limit) THEN
		SET max_limit = %s;
		IF max_limit IS NOT NULL THEN
			SELECT IFNULL(SUM(IFNULL(data_limit, used_traffic)), 0) INTO allocated
			FROM users WHERE admin_id = NEW.admin_id AND id != NEW.id;
			IF allocated + IFNULL(NEW.data_limit, 0) > max_limit THEN
				SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'Traffic allocation budget exceeded';
			END IF;
		END IF;
	END IF;
END`, trafficOverageUpdateTrigger, capCase)
	return []string{insert, update}
}

func renderUserOverageTrigger(members *setutil.UintSet) []string {
	return []string{fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT ON users
FOR EACH ROW
BEGIN
	IF NEW.admin_id IN (%s) THEN
		SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'User limit reached';
	END IF;
END`, userOverageInsertTrigger, renderMemberList(members))}
}

var (
	memberListPattern = regexp.MustCompile(`NEW\.admin_id IN \(([\d, ]+)\)`)
	capWhenPattern    = regexp.MustCompile(`WHEN (\d+) THEN \d+`)
)

// parseMemberList extracts the tenant ids from an installed IN-list
// trigger body.
func parseMemberList(body string) *setutil.UintSet {
	set := setutil.NewUintSet()
	m := memberListPattern.FindStringSubmatch(body)
	if m == nil {
		return set
	}
	for _, part := range strings.Split(m[1], ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		set.Add(uint(id))
	}
	return set
}

// parseCapMembers extracts the tenant ids from an installed cap-table
// trigger body.
func parseCapMembers(body string) *setutil.UintSet {
	set := setutil.NewUintSet()
	for _, m := range capWhenPattern.FindAllStringSubmatch(body, -1) {
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		set.Add(uint(id))
	}
	return set
}
