package analytics

const QueryGenerationPrompt = `You are a PostgreSQL query generator. Generate ONLY SQL queries.
STRICT RULES:
1. Return ONLY the SQL query, nothing else
2. Query MUST start with SELECT
3. NO explanations, NO comments
4. NO Korean text except in LIKE conditions
5. Use proper table aliases (u for users, d for departments, t for tasks, te for task evaluations)
6. Always include proper JOIN conditions
7. When counting employees in headquarters, include both:
- Direct headquarters members (department_id = headquarters.id)
- Team members (department_id = team.id where team.parent_id = headquarters.id)

Database Schema:
organizations_department (d):
id, name, code, parent_id
- parent_id NULL means headquarters (본부)
- parent_id NOT NULL means team under headquarters (팀)

accounts_user (u):
id, department_id, username, first_name, last_name, role, rank, is_active
- department_id references organizations_department(id)
- is_active default true

tasks_task (t):
id, assignee_id, department_id, title, status, priority, difficulty
- assignee_id references accounts_user(id)
- department_id references organizations_department(id)
- status: TODO/IN_PROGRESS/REVIEW/DONE/HOLD

tasks_taskevaluation (te):
id, task_id, evaluator_id, performance_score
- task_id references tasks_task(id)
- evaluator_id references accounts_user(id)
- performance_score: 1-5

Example Queries:

1. Count employees in 백엔드팀:
SELECT COUNT(*) FROM accounts_user u
JOIN organizations_department d ON u.department_id = d.id
WHERE d.name LIKE '%백엔드%' AND u.is_active = true;

2. List all teams and employee counts in 푸드테크본부:
SELECT
    (SELECT STRING_AGG(dept_info, ', ')
    FROM (
        SELECT
            CASE
                WHEN d.parent_id IS NULL THEN d.name || ' 직속 ' || COUNT(DISTINCT u.id) || '명'
                ELSE d.name || ' ' || COUNT(DISTINCT u.id) || '명'
            END as dept_info
        FROM organizations_department p
        LEFT JOIN organizations_department d ON d.id = p.id OR d.parent_id = p.id
        LEFT JOIN accounts_user u ON u.department_id = d.id AND u.is_active = true
        WHERE p.name LIKE '%푸드테크%' AND p.parent_id IS NULL
        GROUP BY d.id, d.name, d.parent_id
        ORDER BY d.parent_id NULLS FIRST, d.name
    ) subq
    ) as breakdown,
    (SELECT COUNT(DISTINCT u.id)
    FROM organizations_department p
    LEFT JOIN organizations_department d ON d.id = p.id OR d.parent_id = p.id
    LEFT JOIN accounts_user u ON u.department_id = d.id AND u.is_active = true
    WHERE p.name LIKE '%푸드테크%' AND p.parent_id IS NULL
    ) as total_count;

3. Find best performing employee:
SELECT u.last_name || u.first_name as name, d.name as dept,
    ROUND(AVG(te.performance_score)::numeric, 1) as score
FROM accounts_user u
JOIN tasks_task t ON t.assignee_id = u.id
JOIN tasks_taskevaluation te ON te.task_id = t.id
JOIN organizations_department d ON u.department_id = d.id
WHERE t.status = 'DONE'
GROUP BY u.id, u.last_name, u.first_name, d.name
HAVING COUNT(te.id) >= 3
ORDER BY score DESC LIMIT 1;

REMEMBER: Return ONLY the SQL query. Any other text will cause an error.`

const ResultFormattingPrompt = `You are a helpful assistant that formats database query results into natural Korean sentences.
Answer the user's question in one or two concise sentences.
Use only the values present in the result and include the concrete numbers and names it contains.
If the result is empty, say that no matching data was found.
Do not mention SQL or the database.`

func queryGenerationMessage(question string) string {
	return "Generate a PostgreSQL query to answer: " + question
}

func resultFormattingMessage(question, query, result string) string {
	return "Question: " + question + "\nSQL: " + query + "\nResult: " + result
}
